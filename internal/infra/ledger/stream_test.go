package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"settle_go/internal/domain"
)

type stubStore struct {
	orders []domain.Order
}

func (s *stubStore) Create(context.Context, *domain.Order) error { return nil }
func (s *stubStore) GetByID(context.Context, string) (*domain.Order, error) {
	return nil, nil
}
func (s *stubStore) GetByAddress(context.Context, string) (*domain.Order, error) {
	return nil, nil
}
func (s *stubStore) ConditionalUpdate(context.Context, string, string, map[string]any) (bool, error) {
	return false, nil
}
func (s *stubStore) Update(context.Context, string, map[string]any) error { return nil }
func (s *stubStore) ListByStatus(context.Context, string) ([]domain.Order, error) {
	return s.orders, nil
}

type recordingTrigger struct {
	mu        sync.Mutex
	addresses []string
	notify    chan string
}

func (r *recordingTrigger) CheckAddress(_ context.Context, address string) (domain.Outcome, error) {
	r.mu.Lock()
	r.addresses = append(r.addresses, address)
	r.mu.Unlock()
	r.notify <- address
	return domain.Outcome{Code: domain.OutcomeWaiting}, nil
}

func TestStream_SubscribesAndTriggersChecks(t *testing.T) {
	subscribed := make(chan subscribeMessage, 4)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var sub subscribeMessage
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe failed: %v", err)
			return
		}
		subscribed <- sub

		ev := transferEvent{Type: "transfer", Address: "sx-pending-1", Hash: "h1"}
		if err := conn.WriteJSON(ev); err != nil {
			return
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	store := &stubStore{orders: []domain.Order{
		{PaymentAddress: "sx-pending-1", Status: domain.OrderStatusPending},
		{PaymentAddress: "sx-pending-2", Status: domain.OrderStatusPending},
	}}
	trigger := &recordingTrigger{notify: make(chan string, 4)}

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	stream := NewStream(wsURL, store, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := stream.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer stream.Disconnect()

	select {
	case sub := <-subscribed:
		if sub.Op != "subscribe" {
			t.Errorf("op = %s, want subscribe", sub.Op)
		}
		if len(sub.Addresses) != 2 {
			t.Errorf("subscribed %d addresses, want 2", len(sub.Addresses))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for subscription")
	}

	select {
	case addr := <-trigger.notify:
		if addr != "sx-pending-1" {
			t.Errorf("checked %s, want sx-pending-1", addr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for stream-triggered check")
	}
}
