package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
)

type ApiResponse struct {
	TraceID string                 `json:"traceId"`
	Data    map[string]interface{} `json:"data"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// Do sends a request with a JSON body (nil for none) and a fresh trace id; the body is closed on cleanup.
func Do(t *testing.T, method, url string, payload interface{}) (*http.Response, error) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(pkg.HeaderTraceId, uuid.New().String())

	t.Logf("Request %s %s", method, url)
	resp, err := http.DefaultClient.Do(req)
	if resp != nil {
		t.Logf("Response %s %s: Status %d", method, url, resp.StatusCode)
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

func GetTraceId(resp *http.Response) string {
	return resp.Header.Get(pkg.HeaderTraceId)
}

func DecodeSuccess(r io.Reader) (ApiResponse, error) {
	var out ApiResponse
	err := json.NewDecoder(r).Decode(&out)
	return out, err
}

func DecodeError(r io.Reader) (ErrorResponse, error) {
	var out ErrorResponse
	err := json.NewDecoder(r).Decode(&out)
	return out, err
}
