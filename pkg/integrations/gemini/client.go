package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/httputil"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Schema describes the JSON object the model must return.
type Schema = genai.Schema

// Options configures a Client.
type Options struct {
	APIKey      string        // Required Gemini API key
	Model       string        // Model name (default: DefaultModel)
	Temperature float32       // Sampling temperature (default: 0.2)
	Timeout     time.Duration // Per-request timeout (default: 60s)
	BaseURL     string        // Override the API endpoint (tests)
	HTTPClient  *http.Client  // Override the HTTP client (tests)
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Temperature == 0 {
		o.Temperature = 0.2
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	return o
}

// Client asks a Gemini model for structured JSON completions.
//
// A Client is safe for concurrent use.
type Client struct {
	cli     *genai.Client
	model   string
	temp    float32
	timeout time.Duration
	retry   httputil.Policy
}

// NewClient creates a Gemini client. A missing API key yields a
// CREDENTIAL_MISSING error.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	opts = opts.WithDefaults()
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errs.New(errs.ErrCodeCredentialMissing, "gemini API key is not configured")
	}

	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions.BaseURL = opts.BaseURL
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "create gemini client")
	}
	return &Client{
		cli:     cli,
		model:   opts.Model,
		temp:    opts.Temperature,
		timeout: opts.Timeout,
		retry:   httputil.DefaultPolicy,
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// SetRetryPolicy changes how rate limits and server errors are retried.
func (c *Client) SetRetryPolicy(p httputil.Policy) { c.retry = p }

// Complete sends prompt in JSON mode and returns the model's JSON object.
// When schema is non-nil the response is constrained to it.
//
// Rate limits (429) and server errors are retried. An empty or non-JSON
// answer yields a MODEL_INFERENCE_ERROR.
func (c *Client) Complete(ctx context.Context, prompt string, schema *Schema) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr(c.temp),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	var out json.RawMessage
	err := c.retry.Do(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.cli.Models.GenerateContent(callCtx, c.model, contents, cfg)
		if err != nil {
			return classify(ctx, err)
		}
		out, err = extractJSON(resp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func extractJSON(resp *genai.GenerateContentResponse) (json.RawMessage, error) {
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, errs.New(errs.ErrCodeModelInference, "model returned an empty response")
	}
	text = stripFence(text)
	if !json.Valid([]byte(text)) {
		return nil, errs.New(errs.ErrCodeModelInference, "model returned malformed JSON")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, errs.Wrap(errs.ErrCodeModelInference, err, "compact model response")
	}
	return buf.Bytes(), nil
}

// stripFence removes a ```json ... ``` wrapper some models add even in JSON mode.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", integrations.ErrTimeout, ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return httputil.Retryable(fmt.Errorf("%w: %v", integrations.ErrTimeout, err))
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return httputil.Retryable(fmt.Errorf("%w: %s", integrations.ErrRateLimited, apiErr.Message))
		case apiErr.Code >= 500:
			return httputil.Retryable(fmt.Errorf("%w: gemini status %d: %s", integrations.ErrNetwork, apiErr.Code, apiErr.Message))
		}
		return errs.Wrap(errs.ErrCodeModelInference, err, "gemini request rejected (status %d)", apiErr.Code)
	}
	return httputil.Retryable(fmt.Errorf("%w: %v", integrations.ErrNetwork, err))
}
