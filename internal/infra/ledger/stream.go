package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"settle_go/internal/domain"
	"settle_go/internal/infra"
)

const (
	maxRetries      = 10
	pingInterval    = 30 * time.Second
	readTimeout     = 60 * time.Second
	refreshInterval = 30 * time.Second
)

// CheckTrigger re-runs the settlement check for a payment address.
// The stream never mutates orders itself; observed activity only
// accelerates the next check.
type CheckTrigger interface {
	CheckAddress(ctx context.Context, address string) (domain.Outcome, error)
}

// subscribeMessage updates the server-side watch list.
type subscribeMessage struct {
	Op        string   `json:"op"`
	Addresses []string `json:"addresses"`
}

// transferEvent announces an inbound transaction to a watched address.
type transferEvent struct {
	Type    string `json:"type"` // "transfer"
	Address string `json:"address"`
	Hash    string `json:"hash"`
}

// Stream watches the ledger's websocket feed for transfers to the
// addresses of PENDING orders and triggers a check when one lands.
type Stream struct {
	wsURL   string
	store   domain.OrderStore
	trigger CheckTrigger

	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewStream creates a transfer stream worker.
func NewStream(wsURL string, store domain.OrderStore, trigger CheckTrigger) *Stream {
	return &Stream{
		wsURL:   wsURL,
		store:   store,
		trigger: trigger,
	}
}

// Connect starts the stream connection loop.
func (s *Stream) Connect(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.connectionLoop(ctx)
	return nil
}

func (s *Stream) connectionLoop(ctx context.Context) {
	defer s.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.connect(ctx); err != nil {
			slog.Warn("Transfer stream connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			infra.GlobalMetrics.SetStreamConnected(false)
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			s.readLoop(ctx)
			infra.GlobalMetrics.SetStreamConnected(false)
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	if err := s.subscribePending(ctx); err != nil {
		s.closeConnection()
		return err
	}

	infra.GlobalMetrics.SetStreamConnected(true)
	slog.Info("Transfer stream connected")
	return nil
}

// subscribePending replaces the watch list with the addresses of all
// currently PENDING orders.
func (s *Stream) subscribePending(ctx context.Context) error {
	pending, err := s.store.ListByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("list pending orders: %w", err)
	}

	addresses := make([]string, 0, len(pending))
	for _, order := range pending {
		addresses = append(addresses, order.PaymentAddress)
	}

	msg := subscribeMessage{Op: "subscribe", Addresses: addresses}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	slog.Debug("Watch list updated", slog.Int("addresses", len(addresses)))
	return nil
}

func (s *Stream) readLoop(ctx context.Context) {
	pingTicker := time.NewTicker(pingInterval)
	refreshTicker := time.NewTicker(refreshInterval)
	defer pingTicker.Stop()
	defer refreshTicker.Stop()

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-ctx.Done():
				s.closeConnection()
				return
			case <-done:
				return
			case <-pingTicker.C:
				s.writeMu.Lock()
				err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				s.writeMu.Unlock()
				if err != nil {
					s.closeConnection()
					return
				}
			case <-refreshTicker.C:
				// Newly created orders join the watch list here.
				if err := s.subscribePending(ctx); err != nil {
					slog.Warn("Watch list refresh failed", slog.Any("error", err))
				}
			}
		}
	}()

	for {
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				slog.Warn("Transfer stream read failed", slog.Any("error", err))
			}
			s.closeConnection()
			return
		}

		var ev transferEvent
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Type != "transfer" {
			continue
		}
		s.handleTransfer(ctx, ev)
	}
}

func (s *Stream) handleTransfer(ctx context.Context, ev transferEvent) {
	slog.Info("Inbound transfer announced",
		slog.String("address", ev.Address), slog.String("hash", ev.Hash))

	outcome, err := s.trigger.CheckAddress(ctx, ev.Address)
	if err != nil {
		if domain.IsRetriable(err) {
			// Next announcement or user poll retries; nothing lost.
			slog.Warn("Stream-triggered check deferred", slog.Any("error", err))
			return
		}
		slog.Error("Stream-triggered check failed",
			slog.String("address", ev.Address), slog.Any("error", err))
		return
	}
	slog.Info("Stream-triggered check completed",
		slog.String("address", ev.Address), slog.String("outcome", string(outcome.Code)))
}

// IsConnected reports the current connection state.
func (s *Stream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Stream) closeConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connected = false
}

// Disconnect stops the stream and waits for the loops to exit.
func (s *Stream) Disconnect() {
	if s.cancel != nil {
		s.cancel()
	}
	s.closeConnection()
	s.wg.Wait()
}
