package ragclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"resty.dev/v3"

	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/domain/usage"
	"docchat/chat-gateway/internal/infrastructure/logger"
	"docchat/chat-gateway/internal/infrastructure/metrics"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

type clientStartsAt struct{}

// QueryRequest is the payload forwarded to the document-QA backend. The
// transcript rides along as normalized prior turns; the question itself is
// the Query field.
type QueryRequest struct {
	Query               string      `json:"query"`
	CallerID            string      `json:"callerId"`
	ConversationHistory []chat.Turn `json:"conversationHistory,omitempty"`
	OutputLanguageHint  string      `json:"outputLanguageHint,omitempty"`
}

// QueryResponse is the backend's answer envelope.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// BackendError preserves the backend's HTTP status and error detail so the
// relay can pass both through verbatim. A quota rejection in particular must
// reach the browser as the same 429 the backend produced.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

// errorDetail is the backend's error body shape.
type errorDetail struct {
	Detail string `json:"detail"`
}

// usagePayload is the backend's usage report.
type usagePayload struct {
	QueriesToday int    `json:"queries_today"`
	QueryLimit   *int   `json:"query_limit"`
	Remaining    *int   `json:"remaining"`
	Tier         string `json:"tier"`
}

// Client talks to the document-QA backend.
type Client struct {
	client  *resty.Client
	baseURL string
}

var _ usage.Fetcher = (*Client)(nil)

// NewClient builds a backend client with request logging. timeout bounds
// the slowest call, the query itself.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().SetTimeout(timeout)
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), clientStartsAt{}, time.Now()))
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		log := logger.GetLogger()
		startTime, _ := r.Request.Context().Value(clientStartsAt{}).(time.Time)
		log.Debug().
			Str("client", "rag-backend").
			Int("status", r.StatusCode()).
			Str("method", r.Request.RawRequest.Method).
			Str("path", r.Request.RawRequest.URL.Path).
			Dur("latency", time.Since(startTime)).
			Msg("HTTP client request")
		return nil
	})
	return &Client{
		client:  client,
		baseURL: normalizeBaseURL(baseURL),
	}
}

// Query sends one question and blocks until the backend's complete answer
// arrives. Non-2xx responses come back as *BackendError with the backend's
// status and detail preserved.
func (c *Client) Query(ctx context.Context, token string, request QueryRequest) (*QueryResponse, error) {
	var respBody QueryResponse
	resp, err := c.prepareRequest(ctx, token).
		SetBody(request).
		SetResult(&respBody).
		Post(c.endpoint("/query"))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "backend unreachable", err, "")
	}
	if resp.IsError() {
		metrics.BackendErrorsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode())).Inc()
		return nil, &BackendError{
			StatusCode: resp.StatusCode(),
			Detail:     extractDetail(resp.Bytes()),
		}
	}
	return &respBody, nil
}

// FetchUsage implements usage.Fetcher.
func (c *Client) FetchUsage(ctx context.Context, callerID string) (usage.Snapshot, error) {
	var respBody usagePayload
	resp, err := c.prepareRequest(ctx, "").
		SetQueryParam("callerId", callerID).
		SetResult(&respBody).
		Get(c.endpoint("/usage"))
	if err != nil {
		return usage.Snapshot{}, err
	}
	if resp.IsError() {
		return usage.Snapshot{}, &BackendError{
			StatusCode: resp.StatusCode(),
			Detail:     extractDetail(resp.Bytes()),
		}
	}
	return usage.Snapshot{
		UsedToday: respBody.QueriesToday,
		Limit:     respBody.QueryLimit,
		Remaining: respBody.Remaining,
		Tier:      usage.Tier(respBody.Tier),
	}, nil
}

// UploadDocument forwards a document upload body to the backend untouched.
// The browser's multipart payload streams through without re-encoding.
func (c *Client) UploadDocument(ctx context.Context, token, contentType string, body io.Reader) (json.RawMessage, error) {
	req := c.client.R().SetContext(ctx)
	if strings.TrimSpace(token) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	resp, err := req.
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Post(c.endpoint("/documents"))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "backend unreachable", err, "")
	}
	if resp.IsError() {
		return nil, &BackendError{
			StatusCode: resp.StatusCode(),
			Detail:     extractDetail(resp.Bytes()),
		}
	}
	return json.RawMessage(resp.Bytes()), nil
}

// DocumentStatus relays the backend's document index report untouched.
func (c *Client) DocumentStatus(ctx context.Context, token string) (json.RawMessage, error) {
	resp, err := c.prepareRequest(ctx, token).Get(c.endpoint("/documents/status"))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "backend unreachable", err, "")
	}
	if resp.IsError() {
		return nil, &BackendError{
			StatusCode: resp.StatusCode(),
			Detail:     extractDetail(resp.Bytes()),
		}
	}
	return json.RawMessage(resp.Bytes()), nil
}

func (c *Client) prepareRequest(ctx context.Context, token string) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

func (c *Client) endpoint(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

// extractDetail pulls the backend's error detail out of its body, falling
// back to a generic message when the body is not the expected shape.
func extractDetail(body []byte) string {
	var parsed errorDetail
	if err := json.Unmarshal(body, &parsed); err == nil && strings.TrimSpace(parsed.Detail) != "" {
		return parsed.Detail
	}
	return "Backend error"
}

func normalizeBaseURL(base string) string {
	trimmed := strings.TrimSpace(base)
	return strings.TrimRight(trimmed, "/")
}
