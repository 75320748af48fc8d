package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/simple-container-com/go-aws-lambda-sdk/pkg/util/retry"

	"github.com/integrail/ollama-client/pkg/client/dto"
)

const generateEndpoint = "/api/generate"

//go:generate ../../bin/mockery --config ../../.mockery.yaml

// Doer is the subset of *http.Client used by Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(c *Client)

func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

func WithSleeper(sleep Sleeper) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// Client talks to an Ollama compatible service. It is meant to be used sequentially.
type Client struct {
	baseURL string
	http    Doer
	sleep   Sleeper
	log     logrus.FieldLogger
	policy  RetryPolicy
}

func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.baseURL(),
		http:    &http.Client{},
		sleep:   sleepContext,
		log:     logrus.StandardLogger(),
		policy:  DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckHealth reports whether the service root answers 200. It never returns an error.
func (c *Client) CheckHealth(ctx context.Context) bool {
	err := c.Ping(ctx)
	if err == nil {
		return true
	}
	var attemptErr *AttemptError
	if errors.As(err, &attemptErr) && attemptErr.Kind == FailureStatus {
		c.log.WithField("status", attemptErr.StatusCode).Warn("service responded to health check with unexpected status")
		return false
	}
	c.log.WithError(err).WithField("url", c.baseURL).Error("service is unreachable, check that ollama is running (docker-compose ps)")
	return false
}

// Ping issues a GET to the service root and classifies any failure.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, c.policy.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return transportFailure(0, errors.Wrapf(err, "failed to init health request for %q", c.baseURL))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return transportFailure(0, errors.Wrapf(err, "failed to reach %q", c.baseURL))
	}
	defer resp.Body.Close()
	body := readBytes(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return statusFailure(0, resp.StatusCode, body)
	}
	return nil
}

// GenerateText returns the generated text, or nil when no result could be obtained.
func (c *Client) GenerateText(ctx context.Context, model, prompt string, maxRetries int) *string {
	res, err := c.Generate(ctx, NewGenerationRequest(model, prompt), maxRetries)
	if err != nil {
		c.log.WithError(err).Error("failed to generate text")
		return nil
	}
	return res.Response
}

// Generate posts req to the generate endpoint, retrying failed attempts up to maxRetries
// times (DefaultRetryPolicy().MaxRetries when maxRetries <= 0). A sleep follows every
// failed attempt. Once all attempts fail an *ExhaustedError is returned.
func (c *Client) Generate(ctx context.Context, req GenerationRequest, maxRetries int) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid generation request")
	}
	maxRetries = lo.If(maxRetries > 0, maxRetries).Else(lo.If(c.policy.MaxRetries > 0, c.policy.MaxRetries).Else(DefaultMaxRetries))

	body, err := json.Marshal(req.payload())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal generate request")
	}

	var (
		last     *AttemptError
		aborted  error
		attempts int
	)
	out, err := retry.With(retry.Config[dto.GenerateResponse]{
		MaxRetries: maxRetries,
		Action: func() (dto.GenerateResponse, error) {
			if aborted != nil {
				return dto.GenerateResponse{}, aborted
			}
			attempt := attempts
			attempts++
			res, failure := c.attempt(ctx, attempt, body)
			if failure != nil {
				return dto.GenerateResponse{}, failure
			}
			return *res, nil
		},
		AttemptErrorCallback: func(i int, err error) {
			var failure *AttemptError
			if !errors.As(err, &failure) {
				return
			}
			last = failure
			if ctx.Err() != nil {
				aborted = errors.Wrapf(ctx.Err(), "generation aborted on attempt %d", failure.Attempt)
				return
			}

			delay := c.policy.Delay(failure.Kind, i-1)
			log := c.log.WithFields(logrus.Fields{
				"attempt": failure.Attempt,
				"delay":   delay,
				"model":   req.Model,
			})
			if failure.Kind == FailureStatus {
				log.WithField("status", failure.StatusCode).Warnf("api error (code %d): %s", failure.StatusCode, failure.Body)
			} else {
				log.WithError(failure.Err).Error("network error")
			}
			if err := c.sleep(ctx, delay); err != nil {
				aborted = errors.Wrapf(err, "generation aborted while backing off after attempt %d", failure.Attempt)
			}
		},
	})
	if aborted != nil {
		return nil, aborted
	}
	if err != nil {
		return nil, &ExhaustedError{Attempts: attempts, Last: last}
	}
	return &Result{Response: out.Response, Attempts: attempts, Meta: *out}, nil
}

func (c *Client) attempt(ctx context.Context, attempt int, body []byte) (*dto.GenerateResponse, *AttemptError) {
	ctx, cancel := withTimeout(ctx, c.policy.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generateEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, transportFailure(attempt, errors.Wrapf(err, "failed to init generate request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportFailure(attempt, errors.Wrapf(err, "failed to post %s", generateEndpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusFailure(attempt, resp.StatusCode, readBytes(resp.Body))
	}
	var out dto.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, transportFailure(attempt, errors.Wrapf(err, "failed to decode generate response"))
	}
	return &out, nil
}

// withTimeout leaves ctx untouched when d is not positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func readBytes(stream io.Reader) []byte {
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(stream)
	return buf.Bytes()
}
