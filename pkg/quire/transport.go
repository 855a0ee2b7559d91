package quire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Action discriminates write requests.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Transport performs exactly one round trip against the backend and
// returns the raw JSON body. It never builds a Result; builders translate
// its errors.
type Transport interface {
	Read(ctx context.Context, sheet string, params map[string]string) ([]byte, error)
	Write(ctx context.Context, action Action, sheet string, payload any) ([]byte, error)
	Name() string
}

// Patcher is implemented by transports that can select rows themselves.
// Update hands such a transport the filters and the new values separately
// instead of the merged wire payload, so only the values are written and
// only rows matching every filter are touched.
type Patcher interface {
	Patch(ctx context.Context, sheet string, filters []Filter, values Row) ([]byte, error)
}

// httpTransport talks to an Apps Script web app.
type httpTransport struct {
	endpoint   string
	httpClient *http.Client
}

func newHTTPTransport(endpoint string, client *http.Client) *httpTransport {
	return &httpTransport{
		endpoint:   endpoint,
		httpClient: client,
	}
}

func (t *httpTransport) Name() string {
	return BackendAppsScript
}

func (t *httpTransport) Read(ctx context.Context, sheet string, params map[string]string) ([]byte, error) {
	u, err := url.Parse(t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	q := u.Query()
	q.Set("sheet", sheet)
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return t.do(req)
}

func (t *httpTransport) Write(ctx context.Context, action Action, sheet string, payload any) ([]byte, error) {
	body, err := writeBody(action, sheet, payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Apps Script rejects CORS preflights, so writes go out as plain text.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	req.Header.Set("Accept", "application/json")

	return t.do(req)
}

func writeBody(action Action, sheet string, payload any) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "action", string(action))
	if err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}
	if body, err = sjson.SetBytes(body, "sheet", sheet); err != nil {
		return nil, fmt.Errorf("encode sheet: %w", err)
	}
	if body, err = sjson.SetBytes(body, "data", payload); err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	return body, nil
}

func (t *httpTransport) do(req *http.Request) ([]byte, error) {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, snippet(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response: %s", snippet(body))
	}
	return body, nil
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
