package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

type memoryLog struct {
	mu         sync.Mutex
	deliveries []Delivery
}

func (m *memoryLog) LogDelivery(_ context.Context, d Delivery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, d)
}

func (m *memoryLog) attempts() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.deliveries))
	for _, d := range m.deliveries {
		out = append(out, d.Attempt)
	}
	return out
}

func newTestClient(url string) (*Client, *memoryLog) {
	log := &memoryLog{}
	c := New(url, "my-secret")
	c.retryDelays = []time.Duration{time.Millisecond, time.Millisecond}
	c.SetDeliveryLog(log)
	return c, log
}

func TestSignPayload(t *testing.T) {
	payload := []byte(`{"event":"lecture.created","data":{}}`)

	signature := SignPayload("test-secret", payload)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if signature != expected {
		t.Errorf("expected signature %s, got %s", expected, signature)
	}
	if SignPayload("other-secret", payload) == signature {
		t.Error("different secrets should produce different signatures")
	}
}

func TestDispatchSuccess(t *testing.T) {
	var receivedSignature string
	var receivedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedSignature = r.Header.Get("X-Webhook-Signature")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	event := Event{
		Name:      LectureCreated,
		Timestamp: time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC),
		Data:      map[string]any{"id": "abc123def"},
	}
	eventJSON, _ := json.Marshal(event)

	client, log := newTestClient(server.URL)
	if err := client.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if want := SignPayload("my-secret", eventJSON); receivedSignature != want {
		t.Errorf("expected signature %s, got %s", want, receivedSignature)
	}
	var received Event
	if err := json.Unmarshal(receivedBody, &received); err != nil {
		t.Fatalf("failed to unmarshal received body: %v", err)
	}
	if received.Name != LectureCreated {
		t.Errorf("expected event %s, got %s", LectureCreated, received.Name)
	}
	if got := log.attempts(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected a single logged attempt, got %v", got)
	}
}

func TestDispatchRetriesUntilSuccess(t *testing.T) {
	var attemptCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attemptCount.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, log := newTestClient(server.URL)
	if err := client.Dispatch(context.Background(), Event{Name: NoteCreated, Timestamp: time.Now()}); err != nil {
		t.Fatalf("expected no error after successful retry, got %v", err)
	}
	if attemptCount.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attemptCount.Load())
	}
	if got := log.attempts(); len(got) != 3 || got[2] != 3 {
		t.Errorf("expected attempts 1..3 logged, got %v", got)
	}
}

func TestDispatchAllRetriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	err := client.Dispatch(context.Background(), Event{Name: NoteDeleted, Timestamp: time.Now()})
	if err == nil {
		t.Fatal("expected error after all retries failed")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("expected error to mention status 502, got: %s", err)
	}
}

func TestDispatchConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	unreachable := server.URL
	server.Close()

	client, log := newTestClient(unreachable)
	if err := client.Dispatch(context.Background(), Event{Name: LectureDeleted, Timestamp: time.Now()}); err == nil {
		t.Fatal("expected error for unreachable URL")
	}
	if got := log.attempts(); len(got) != 3 {
		t.Errorf("expected 3 logged attempts, got %v", got)
	}
}

func TestDispatchStopsOnCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	client.retryDelays = []time.Duration{time.Hour, time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := client.Dispatch(ctx, Event{Name: LectureCreated}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestResponseBodyTruncation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	statusCode, respBody, err := client.doPost(context.Background(), []byte("{}"), "sha256=test")
	if err != nil {
		t.Fatalf("doPost error: %v", err)
	}
	if statusCode == nil || *statusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %v", statusCode)
	}
	if len(respBody) != maxResponseBodyBytes {
		t.Errorf("expected body truncated to %d bytes, got %d", maxResponseBodyBytes, len(respBody))
	}
}

func TestPublishDeliversInBackground(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e Event
		_ = json.NewDecoder(r.Body).Decode(&e)
		received <- e.Name
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	client.Publish(context.Background(), Event{Name: NoteCreated, Timestamp: time.Now()})

	select {
	case name := <-received:
		if name != NoteCreated {
			t.Errorf("expected %s, got %s", NoteCreated, name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for background delivery")
	}
}

func TestPostgresLog(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	status := http.StatusOK
	mock.ExpectExec("INSERT INTO webhook_deliveries").
		WithArgs(LectureCreated, pgxmock.AnyArg(), pgxmock.AnyArg(), "ok", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	PostgresLog{DB: mock}.LogDelivery(context.Background(), Delivery{
		Event:        LectureCreated,
		Payload:      []byte(`{}`),
		StatusCode:   &status,
		ResponseBody: "ok",
		Attempt:      1,
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet mock expectations: %v", err)
	}
}
