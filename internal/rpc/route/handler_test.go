package route

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/veeru594/ai-agent/internal/rpc"
)

func TestHandlerStreamsEvents(t *testing.T) {
	handler := NewHandler(&RouterRunner{Router: &stubRouter{result: successResult()}}, nil)
	body := bytes.NewBufferString(`{"request_id":"test","prompt":"explain the router"}`)
	req := httptest.NewRequest(http.MethodPost, "/route", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	resp := rr.Result()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "test" {
		t.Fatalf("expected request id header, got %q", got)
	}

	scanner := bufio.NewScanner(resp.Body)
	var last rpc.RouteEvent
	var eventCount int
	for scanner.Scan() {
		eventCount++
		if err := json.Unmarshal(scanner.Bytes(), &last); err != nil {
			t.Fatalf("invalid json event: %v", err)
		}
	}

	if eventCount != 4 {
		t.Fatalf("expected 4 events, got %d", eventCount)
	}
	if last.Type != rpc.EventDone || !last.Done {
		t.Fatalf("expected trailing done event, got %+v", last)
	}
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	handler := NewHandler(&RouterRunner{Router: &stubRouter{}}, nil)

	cases := []struct {
		method string
		body   string
		code   int
	}{
		{method: http.MethodGet, code: http.StatusMethodNotAllowed},
		{method: http.MethodPost, body: "{", code: http.StatusBadRequest},
		{method: http.MethodPost, body: `{"prompt":""}`, code: http.StatusBadRequest},
		{method: http.MethodPost, body: `{"prompt":"  \n\t "}`, code: http.StatusBadRequest},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(tc.method, "/route", bytes.NewBufferString(tc.body)))
		if rr.Code != tc.code {
			t.Fatalf("%s %q: expected %d, got %d", tc.method, tc.body, tc.code, rr.Code)
		}
	}
}
