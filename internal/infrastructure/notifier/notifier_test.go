package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPNotifier_SendCallback(t *testing.T) {
	var got CallbackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL)
	err := n.SendCallback(context.Background(), CallbackPayload{PayoutID: "p-1", Status: "completed", PreviousStatus: "pending"})
	if err != nil {
		t.Fatalf("SendCallback: %v", err)
	}
	if got.PayoutID != "p-1" || got.Status != "completed" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestHTTPNotifier_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewHTTPNotifier(srv.URL).SendCallback(context.Background(), CallbackPayload{PayoutID: "p-1"}); err == nil {
		t.Fatal("expected error for 502")
	}
}
