package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mgirard/rentadesk/internal/deals"
	"github.com/mgirard/rentadesk/internal/dealstore"
	"github.com/mgirard/rentadesk/internal/rentab"
)

// failingStore wraps a MemoryStore and fails every persist the way a
// broken backend would, so the handler-level error mapping can be checked
// without a real backend outage.
type failingStore struct {
	*dealstore.MemoryStore
}

func (f *failingStore) Write(dealID string, snap rentab.Snapshot) (*rentab.Snapshot, error) {
	return nil, dealstore.NewPersistError(errors.New("disk full"))
}

func (f *failingStore) Clear(dealID string) error {
	return dealstore.NewPersistError(errors.New("disk full"))
}

func newFailingServer() (http.Handler, string) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	registry := deals.NewRegistry(deals.Config{
		Clock: func() time.Time { return now },
		NewID: func() string { return "deal-001" },
	})
	meta, err := registry.Create(deals.CreateInput{Title: "any"})
	if err != nil {
		panic(err)
	}
	store := &failingStore{MemoryStore: dealstore.NewMemoryStore(dealstore.Config{
		Clock: func() time.Time { return now },
	})}
	return NewServer(registry, store, rentab.DefaultConfig()), meta.ID
}

func newRawRequest(method, path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

type errorEnvelope struct {
	OK    bool `json:"ok"`
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Transient bool   `json:"transient"`
	} `json:"error"`
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, body)
	}
	if env.OK {
		t.Fatalf("error envelope claims ok: %s", body)
	}
	if env.Error.Message == "" {
		t.Fatalf("error envelope without message: %s", body)
	}
	return env
}

func TestPersistFailureMapsTo503(t *testing.T) {
	h, id := newFailingServer()

	rr := postJSON(t, h, "/v1/deals/"+id+"/analyze", resaleForm())
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on persist failure, got %d: %s", rr.Code, rr.Body.String())
	}
	env := decodeError(t, rr.Body.Bytes())
	if env.Error.Code != dealstore.CodeUnavailable {
		t.Fatalf("expected unavailable code, got %q", env.Error.Code)
	}
	if !env.Error.Transient {
		t.Fatal("persist failure must be marked transient")
	}

	rr = doRequest(t, h, http.MethodDelete, "/v1/deals/"+id+"/snapshot", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on clear failure, got %d", rr.Code)
	}
}

func TestNotFoundEnvelopeShape(t *testing.T) {
	h := newServerForTest()
	rr := doRequest(t, h, http.MethodGet, "/v1/deals/unknown/snapshot", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	env := decodeError(t, rr.Body.Bytes())
	if env.Error.Code != dealstore.CodeNotFound {
		t.Fatalf("expected not_found code, got %q", env.Error.Code)
	}
	if env.Error.Transient {
		t.Fatal("not_found must not be transient")
	}
}

func TestMalformedJSONEnvelopeShape(t *testing.T) {
	h := newServerForTest()
	id := mustCreateDeal(t, h, "any")

	req, rr := newRawRequest(http.MethodPost, "/v1/deals/"+id+"/analyze", "{not json")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rr.Code)
	}
	env := decodeError(t, rr.Body.Bytes())
	if env.Error.Code != dealstore.CodeValidation {
		t.Fatalf("expected validation code, got %q", env.Error.Code)
	}
}
