package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	Prompt       string
	Temperature  *float64 // nil uses task default
	NumCtx       *int     // nil uses task default
}

// GenerateResponse holds the result of a text generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient provides access to a language model. Implementations issue a
// single request per call; retry policy belongs to the caller.
type LLMClient interface {
	// GenerateText sends a prompt and returns the raw text response.
	GenerateText(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// GenerateStructured requests a JSON completion and returns the decoded
	// JSON object or array.
	GenerateStructured(ctx context.Context, req GenerateRequest) (json.RawMessage, error)

	// Available checks whether the Ollama server is reachable.
	Available(ctx context.Context) bool
}

// ollamaClient implements LLMClient using the Ollama HTTP API.
type ollamaClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewOllamaClient creates an LLMClient that talks to an Ollama instance.
func NewOllamaClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &ollamaClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// ollamaRequest is the JSON body sent to POST /api/generate.
type ollamaRequest struct {
	Model     string         `json:"model"`
	System    string         `json:"system,omitempty"`
	Prompt    string         `json:"prompt"`
	Stream    bool           `json:"stream"`
	Format    string         `json:"format,omitempty"`
	KeepAlive string         `json:"keep_alive,omitempty"`
	Options   *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

// ollamaResponse is the JSON body returned by POST /api/generate (non-streaming).
// Response stays raw: it is usually a string but some servers hand back an
// already-decoded object when format is "json".
type ollamaResponse struct {
	Model    string          `json:"model"`
	Response json.RawMessage `json:"response"`
}

func (c *ollamaClient) GenerateText(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	resp, err := c.call(ctx, req, "")
	if err == nil {
		var text string
		if jerr := json.Unmarshal(resp.Response, &text); jerr != nil {
			err = &BackendError{Message: "response field is not a string"}
		} else {
			c.report(req.Task, start, nil)
			return &GenerateResponse{
				Text:      text,
				Model:     resp.Model,
				LatencyMs: time.Since(start).Milliseconds(),
			}, nil
		}
	}
	c.report(req.Task, start, err)
	return nil, err
}

func (c *ollamaClient) GenerateStructured(ctx context.Context, req GenerateRequest) (json.RawMessage, error) {
	start := time.Now()
	resp, err := c.call(ctx, req, "json")
	var data json.RawMessage
	if err == nil {
		data, err = decodeStructured(resp.Response)
	}
	c.report(req.Task, start, err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// decodeStructured unwraps the "response" value: a JSON string must itself
// hold a JSON object or array, an object or array is returned as is, and
// anything else is rejected. No repair is attempted; malformed output is a
// failed attempt.
func decodeStructured(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ParseError{Err: errors.New("empty response")}
	}

	switch trimmed[0] {
	case '"':
		var content string
		if err := json.Unmarshal(trimmed, &content); err != nil {
			return nil, &ParseError{Content: string(trimmed), Err: err}
		}
		inner := bytes.TrimSpace([]byte(content))
		if !json.Valid(inner) {
			return nil, &ParseError{Content: content, Err: errors.New("response content is not valid JSON")}
		}
		if inner[0] != '{' && inner[0] != '[' {
			return nil, &ParseError{Content: content, Err: errors.New("response content is not a JSON object or array")}
		}
		return json.RawMessage(inner), nil
	case '{', '[':
		return json.RawMessage(trimmed), nil
	default:
		return nil, &ParseError{Content: string(trimmed), Err: fmt.Errorf("unexpected response type %q", string(trimmed))}
	}
}

func (c *ollamaClient) call(ctx context.Context, req GenerateRequest, format string) (*ollamaResponse, error) {
	taskCfg := c.cfg.Tasks[req.Task]
	opts := &ollamaOptions{Temperature: taskCfg.Temperature, NumCtx: taskCfg.NumCtx}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.NumCtx != nil {
		opts.NumCtx = *req.NumCtx
	}

	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body := ollamaRequest{
		Model:     c.cfg.Model,
		System:    req.SystemPrompt,
		Prompt:    req.Prompt,
		Stream:    false,
		Format:    format,
		KeepAlive: c.cfg.KeepAlive,
		Options:   opts,
	}

	resp, err := c.doRequest(ctx, body)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, &BackendError{Message: "request timed out", Err: ErrTimeout}
		}
		if isConnectionError(err) {
			return nil, &BackendError{Message: "connection failed", Err: errors.Join(ErrBackendUnavailable, err)}
		}
		var be *BackendError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, &BackendError{Message: "transport failure", Err: err}
	}
	return resp, nil
}

func (c *ollamaClient) doRequest(ctx context.Context, body ollamaRequest) (*ollamaResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &BackendError{Message: "reading response", Err: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &BackendError{StatusCode: httpResp.StatusCode, Message: string(respBody)}
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &BackendError{Message: "decoding response", Err: err}
	}
	if len(resp.Response) == 0 || string(resp.Response) == "null" {
		return nil, &BackendError{Message: "response missing 'response' field"}
	}

	return &resp, nil
}

func (c *ollamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *ollamaClient) report(task TaskType, start time.Time, err error) {
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      task,
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	var backendErr *BackendError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrBackendUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.As(err, &backendErr):
		return "BACKEND"
	default:
		return "UNKNOWN"
	}
}
