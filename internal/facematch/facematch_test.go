package facematch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func compareServer(t *testing.T, handler http.HandlerFunc) *HTTPComparator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPComparator(srv.URL, 2*time.Second)
}

func TestCompareVerdict(t *testing.T) {
	for _, want := range []bool{true, false} {
		cmp := compareServer(t, func(w http.ResponseWriter, r *http.Request) {
			var req compareRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Reference == "" || req.Candidate == "" {
				t.Errorf("request missing images: %+v", req)
			}
			json.NewEncoder(w).Encode(compareResponse{Match: want})
		})

		got, err := cmp.Compare(context.Background(), "ref-b64", "cand-b64")
		if err != nil {
			t.Fatalf("Compare: %v", err)
		}
		if got != want {
			t.Errorf("match = %v, want %v", got, want)
		}
	}
}

func TestCompareServiceError(t *testing.T) {
	cmp := compareServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	if _, err := cmp.Compare(context.Background(), "ref", "cand"); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}

func TestCompareBadPayload(t *testing.T) {
	cmp := compareServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	if _, err := cmp.Compare(context.Background(), "ref", "cand"); err == nil {
		t.Fatalf("expected error on undecodable body")
	}
}

func TestCompareUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cmp := NewHTTPComparator(url, 500*time.Millisecond)
	if _, err := cmp.Compare(context.Background(), "ref", "cand"); err == nil {
		t.Fatalf("expected error when service is down")
	}
}
