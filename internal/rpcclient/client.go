// Package rpcclient provides a JSON-RPC 2.0 client for hdkeyd.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Client is a JSON-RPC 2.0 HTTP client.
type Client struct {
	endpoint string
	http     *http.Client
	nextID   atomic.Int64
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 2*time.Minute)
}

// NewWithTimeout creates a new RPC client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      int64       `json:"id"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int64           `json:"id"`
}

// RPCError is returned when the server responds with an error.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call invokes method and decodes its result into result. A nil result
// discards the response payload.
func (c *Client) Call(method string, params, result interface{}) error {
	return c.CallContext(context.Background(), method, params, result)
}

// CallContext is Call bounded by ctx.
func (c *Client) CallContext(ctx context.Context, method string, params, result interface{}) error {
	req := c.newRequest(method, params)

	var resp response
	if err := c.post(ctx, req, &resp); err != nil {
		return err
	}
	return resp.decode(req.ID, result)
}

// BatchCall is one element of a batch. Err is set after Batch returns.
type BatchCall struct {
	Method string
	Params interface{}
	Result interface{}
	Err    error
}

// Batch sends calls in a single HTTP round trip. The returned error covers
// transport failures only; per-call failures land in each BatchCall.Err.
func (c *Client) Batch(ctx context.Context, calls []BatchCall) error {
	if len(calls) == 0 {
		return nil
	}
	reqs := make([]request, len(calls))
	byID := make(map[int64]int, len(calls))
	for i := range calls {
		reqs[i] = c.newRequest(calls[i].Method, calls[i].Params)
		byID[reqs[i].ID] = i
	}

	var resps []response
	if err := c.post(ctx, reqs, &resps); err != nil {
		return err
	}

	answered := make([]bool, len(calls))
	for _, resp := range resps {
		i, ok := byID[resp.ID]
		if !ok || answered[i] {
			continue
		}
		answered[i] = true
		calls[i].Err = resp.decode(resp.ID, calls[i].Result)
	}
	for i := range calls {
		if !answered[i] {
			calls[i].Err = fmt.Errorf("no response for %s", calls[i].Method)
		}
	}
	return nil
}

func (c *Client) newRequest(method string, params interface{}) request {
	return request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}
}

// post sends payload and decodes the HTTP body into out.
func (c *Client) post(ctx context.Context, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (r *response) decode(wantID int64, result interface{}) error {
	if r.Error != nil {
		return r.Error
	}
	if r.ID != wantID {
		return fmt.Errorf("response id %d does not match request id %d", r.ID, wantID)
	}
	if result == nil || r.Result == nil {
		return nil
	}
	if err := json.Unmarshal(r.Result, result); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
