package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geniusclasses/geniusclasses/internal/notify"
)

func TestNotify_Success(t *testing.T) {
	var receivedBody txRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tx" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			t.Errorf("unexpected auth: %s:%s", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&receivedBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data": true}`))
	}))
	defer srv.Close()

	client := New(Config{
		BaseURL:    srv.URL,
		Username:   "admin",
		Password:   "secret",
		TemplateID: 7,
		InboxEmail: "office@geniusclasses.in",
	})

	err := client.Notify(context.Background(), notify.Notice{
		Kind:    notify.Info,
		Message: "New inquiry: Admission",
		Detail:  "Name: Riya\nPhone: 9999999999",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedBody.SubscriberEmail != "office@geniusclasses.in" {
		t.Errorf("expected inbox email, got %q", receivedBody.SubscriberEmail)
	}
	if receivedBody.TemplateID != 7 {
		t.Errorf("expected template ID 7, got %d", receivedBody.TemplateID)
	}
	if receivedBody.Data["message"] != "New inquiry: Admission" || receivedBody.Data["kind"] != "info" {
		t.Errorf("unexpected data %v", receivedBody.Data)
	}
	if !strings.Contains(receivedBody.Data["detail"], "Riya") {
		t.Errorf("expected detail to be forwarded, got %q", receivedBody.Data["detail"])
	}
}

func TestNotify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, TemplateID: 1, InboxEmail: "office@geniusclasses.in"})
	err := client.Notify(context.Background(), notify.Notice{Kind: notify.Info, Message: "hello"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestNotify_NotConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no base url", Config{InboxEmail: "office@geniusclasses.in"}},
		{"no inbox", Config{BaseURL: "http://127.0.0.1:1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := New(tt.cfg).Notify(context.Background(), notify.Notice{Message: "hi"}); err != nil {
				t.Errorf("expected nil error when unconfigured, got %v", err)
			}
		})
	}
}

func TestNotify_ImplementsNotifier(t *testing.T) {
	var _ notify.Notifier = New(Config{})
}
