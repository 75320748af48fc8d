package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/integrail/ollama-client/pkg/client/dto"
	"github.com/integrail/ollama-client/pkg/config"
)

func ollamaStub(t *testing.T, rootStatus int, generate http.HandlerFunc) string {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", generate)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(rootStatus)
		_, _ = io.WriteString(w, "Ollama is running")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, url string, args ...string) (string, error) {
	return executeWithEnvErr(t, url, nil, args...)
}

func executeWithEnvErr(t *testing.T, url string, loadErr error, args ...string) (string, error) {
	RegisterTestingT(t)
	out := &bytes.Buffer{}
	cmd := newRootCmd(config.Config{
		Url:        url,
		Model:      "deepseek-coder:6.7b",
		MaxRetries: 3,
		LogLevel:   "panic",
	}, loadErr, out)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunPrintsResponse(t *testing.T) {
	var got dto.GenerateRequest
	url := ollamaStub(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"response":"Great job, Vasily!"}`)
	})

	out, err := execute(t, url, "--prompt", "praise", "-o", "temperature=0.1", "-m", "llama3.2")
	Expect(err).To(BeNil())
	Expect(out).To(ContainSubstring("Model response:"))
	Expect(out).To(ContainSubstring("Great job, Vasily!"))
	Expect(got.Model).To(Equal("llama3.2"))
	Expect(got.Prompt).To(Equal("praise"))
	Expect(got.Options).To(Equal(map[string]float64{"temperature": 0.1, "num_predict": 200}))
}

func TestRunFailsWhenUnhealthy(t *testing.T) {
	generated := false
	url := ollamaStub(t, http.StatusNotFound, func(w http.ResponseWriter, r *http.Request) {
		generated = true
	})

	out, err := execute(t, url)
	Expect(errors.Is(err, errUnhealthy)).To(BeTrue())
	Expect(out).To(ContainSubstring("is not available"))
	Expect(generated).To(BeFalse())
}

func TestRunReportsMissingResult(t *testing.T) {
	url := ollamaStub(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"done":true}`)
	})

	out, err := execute(t, url)
	Expect(errors.Is(err, errNoResult)).To(BeTrue())
	Expect(out).To(ContainSubstring("ollama list"))
	Expect(out).To(ContainSubstring("free -h"))
}

func TestRunRejectsBadOptions(t *testing.T) {
	url := ollamaStub(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {})

	out, err := execute(t, url, "-o", "temperature")
	Expect(err).To(HaveOccurred())
	Expect(out).To(ContainSubstring("key=value"))

	_, err = execute(t, url, "--log-level", "chatty")
	Expect(err).To(HaveOccurred())
}

func TestRunRejectsNonPositiveRetries(t *testing.T) {
	generated := false
	url := ollamaStub(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		generated = true
	})

	for _, retries := range []string{"0", "-2"} {
		out, err := execute(t, url, "--retries", retries)
		Expect(err).To(HaveOccurred())
		Expect(out).To(ContainSubstring("--retries must be positive"))
	}
	Expect(generated).To(BeFalse())
}

func TestBrokenEnvironmentOnlyFailsRuns(t *testing.T) {
	url := ollamaStub(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response":"hi"}`)
	})
	envErr := errors.New("OLLAMA_MAX_RETRIES must be positive, got 0")

	_, err := executeWithEnvErr(t, url, envErr, "--version")
	Expect(err).To(BeNil())
	_, err = executeWithEnvErr(t, url, envErr, "--help")
	Expect(err).To(BeNil())

	out, err := executeWithEnvErr(t, url, envErr)
	Expect(err).To(MatchError(envErr))
	Expect(out).To(ContainSubstring("OLLAMA_MAX_RETRIES"))
}
