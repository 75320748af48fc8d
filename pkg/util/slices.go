package util

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// SliceToMap turns key=value pairs into a map; entries without "=" map to an empty value.
func SliceToMap(slice []string) map[string]string {
	return lo.SliceToMap(slice, func(s string) (string, string) {
		key, value, _ := strings.Cut(s, "=")
		return strings.TrimSpace(key), strings.TrimSpace(value)
	})
}

// ParseOptions parses numeric sampling options such as temperature=0.2 or num_predict=512.
func ParseOptions(slice []string) (map[string]float64, error) {
	if invalid, found := lo.Find(slice, func(s string) bool { return !strings.Contains(s, "=") }); found {
		return nil, errors.Errorf("option %q must be in key=value form", invalid)
	}
	res := make(map[string]float64, len(slice))
	for key, value := range SliceToMap(slice) {
		if key == "" {
			return nil, errors.Errorf("option name must not be empty")
		}
		num, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "option %q must be numeric", key)
		}
		res[key] = num
	}
	return res, nil
}
