package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"callscribe/pkg/logger"
	"callscribe/pkg/model"
	"callscribe/pkg/resilience"

	"go.uber.org/zap"
)

// Client issues generateContent calls against the Gemini API. It performs a
// single synchronous call per invocation; retries live with the caller.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	callTimeout time.Duration
	limiter     *resilience.RateLimiter
	client      *http.Client
}

// NewClient creates a Gemini transcription client. The limiter is optional
// and bounds the request rate when present.
func NewClient(apiKey, modelName, baseURL string, callTimeout time.Duration, limiter *resilience.RateLimiter) *Client {
	return &Client{
		apiKey:      apiKey,
		model:       modelName,
		baseURL:     baseURL,
		callTimeout: callTimeout,
		limiter:     limiter,
		// Per-call deadlines come from the context; the transport itself
		// carries no timeout.
		client: &http.Client{},
	}
}

// Transcribe posts the request and returns the raw response body on success.
// Failures are classified StageErrors: timeout when the call deadline is
// exceeded, remote when the endpoint returns a structured failure status,
// transport for anything else at the network level.
func (c *Client) Transcribe(ctx context.Context, req *GenerateRequest) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, model.NewStageError(model.OutcomeTransport, err.Error(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Debug("Calling transcription endpoint",
		zap.String("model", c.model),
		zap.Int("request_bytes", len(body)))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, model.NewStageError(model.OutcomeTimeout, "Request timeout", err)
		}
		return nil, model.NewStageError(model.OutcomeTransport, err.Error(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, model.NewStageError(model.OutcomeTimeout, "Request timeout", err)
		}
		return nil, model.NewStageError(model.OutcomeTransport, err.Error(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewStageError(model.OutcomeRemote, remoteErrorMessage(respBody), nil)
	}

	return respBody, nil
}

// remoteErrorMessage extracts the message from a structured error body,
// falling back to a generic string when the body has no usable message.
func remoteErrorMessage(body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return "Unknown error"
}
