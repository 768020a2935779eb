package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket client behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// SubscribeTimeout bounds the wait for subscription confirmation.
	SubscribeTimeout time.Duration
	// OnReconnect is invoked after every successful reconnect. Used to
	// feed reconnect counters without tying this package to a metrics
	// registry.
	OnReconnect func()
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		SubscribeTimeout:  30 * time.Second,
	}
}

// LogStream implements WSClient using gorilla/websocket. It maintains a
// single logsSubscribe subscription and transparently reconnects and
// resubscribes when the connection drops.
type LogStream struct {
	endpoint string
	config   WSConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// single subscription state; guarded by subMu
	subMu    sync.Mutex
	subID    int64
	filter   LogsFilter
	notifyCh chan LogNotification
	active   bool

	// pendingSubs maps request ID to channel waiting for subscription ID
	pendingSubs   map[uint64]chan int64
	pendingSubsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewLogStream creates a WebSocket client and connects to the endpoint.
func NewLogStream(ctx context.Context, endpoint string, config *WSConfig) (*LogStream, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	s := &LogStream{
		endpoint:    endpoint,
		config:      cfg,
		pendingSubs: make(map[uint64]chan int64),
		done:        make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

var _ WSClient = (*LogStream)(nil)

func (s *LogStream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// SubscribeLogs subscribes to program logs matching the filter. Only one
// subscription may be active per stream.
func (s *LogStream) SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("stream closed")
	}

	s.subMu.Lock()
	if s.active {
		s.subMu.Unlock()
		return nil, fmt.Errorf("subscription already active")
	}
	s.subMu.Unlock()

	subID, err := s.sendSubscribe(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Large buffer absorbs bursts; the sender blocks rather than drops,
	// downstream backpressure policy lives in the feed dispatcher.
	ch := make(chan LogNotification, 10000)

	s.subMu.Lock()
	s.subID = subID
	s.filter = filter
	s.notifyCh = ch
	s.active = true
	s.subMu.Unlock()

	return ch, nil
}

// sendSubscribe issues a logsSubscribe request and waits for the
// confirmation carrying the subscription ID.
func (s *LogStream) sendSubscribe(ctx context.Context, filter LogsFilter) (int64, error) {
	reqID := s.requestID.Add(1)

	var filterParam interface{}
	if len(filter.Mentions) > 0 {
		filterParam = map[string]interface{}{"mentions": filter.Mentions}
	} else {
		filterParam = "all"
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "logsSubscribe",
		Params: []interface{}{
			filterParam,
			map[string]string{"commitment": "confirmed"},
		},
	}

	confirmCh := make(chan int64, 1)
	s.pendingSubsMu.Lock()
	s.pendingSubs[reqID] = confirmCh
	s.pendingSubsMu.Unlock()

	clearPending := func() {
		s.pendingSubsMu.Lock()
		delete(s.pendingSubs, reqID)
		s.pendingSubsMu.Unlock()
	}

	s.connMu.Lock()
	if s.conn == nil {
		s.connMu.Unlock()
		clearPending()
		return 0, fmt.Errorf("not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	err := s.conn.WriteJSON(req)
	s.connMu.Unlock()

	if err != nil {
		clearPending()
		return 0, fmt.Errorf("write subscribe: %w", err)
	}

	select {
	case subID := <-confirmCh:
		return subID, nil
	case <-time.After(s.config.SubscribeTimeout):
		clearPending()
		return 0, fmt.Errorf("subscription timeout after %s", s.config.SubscribeTimeout)
	case <-s.done:
		return 0, fmt.Errorf("stream closed")
	case <-ctx.Done():
		clearPending()
		return 0, ctx.Err()
	}
}

// Close closes the WebSocket connection and the notification channel.
func (s *LogStream) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.subMu.Lock()
	if s.active {
		close(s.notifyCh)
		s.active = false
	}
	s.subMu.Unlock()

	s.pendingSubsMu.Lock()
	for id, ch := range s.pendingSubs {
		close(ch)
		delete(s.pendingSubs, id)
	}
	s.pendingSubsMu.Unlock()

	s.wg.Wait()
	return nil
}

// readLoop reads messages from the socket and dispatches them.
func (s *LogStream) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			reconnectDelay *= 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = s.config.ReconnectDelay

		s.handleMessage(message)
	}
}

// reconnect re-establishes the connection and resubscribes.
func (s *LogStream) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		// Failed, the next read error triggers another attempt
		log.Printf("[ws] reconnect failed: %v", err)
		return
	}

	if s.config.OnReconnect != nil {
		s.config.OnReconnect()
	}

	s.subMu.Lock()
	active := s.active
	filter := s.filter
	s.subMu.Unlock()

	if !active {
		return
	}

	subCtx, subCancel := context.WithTimeout(context.Background(), s.config.SubscribeTimeout)
	newSubID, err := s.sendSubscribe(subCtx, filter)
	subCancel()
	if err != nil {
		log.Printf("[ws] resubscribe failed: %v", err)
		return
	}

	s.subMu.Lock()
	s.subID = newSubID
	s.subMu.Unlock()
	log.Printf("[ws] reconnected, subscription restored (id=%d)", newSubID)
}

// handleMessage processes an incoming frame.
func (s *LogStream) handleMessage(message []byte) {
	// Subscription confirmation first
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.Result > 0 {
		s.handleSubscribeResponse(&resp)
		return
	}

	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Method == "logsNotification" {
		s.handleLogsNotification(&notif)
		return
	}

	var errResp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      uint64 `json:"id"`
		Error   *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(message, &errResp); err == nil && errResp.Error != nil {
		// Don't crash on error frames; a pending subscribe will time out
		log.Printf("[ws] error response: code=%d msg=%s", errResp.Error.Code, errResp.Error.Message)
	}
}

func (s *LogStream) handleSubscribeResponse(resp *wsSubscribeResponse) {
	s.pendingSubsMu.Lock()
	ch, ok := s.pendingSubs[resp.ID]
	if ok {
		delete(s.pendingSubs, resp.ID)
	}
	s.pendingSubsMu.Unlock()

	if ok {
		select {
		case ch <- resp.Result:
		default:
		}
	}
}

func (s *LogStream) handleLogsNotification(notif *wsNotification) {
	if notif.Params == nil {
		return
	}

	value := notif.Params.Result.Value

	logNotif := LogNotification{
		Signature: value.Signature,
		Logs:      value.Logs,
		Err:       value.Err,
	}
	if notif.Params.Result.Context != nil {
		logNotif.Slot = notif.Params.Result.Context.Slot
	}

	s.subMu.Lock()
	active := s.active && notif.Params.Subscription == s.subID
	ch := s.notifyCh
	s.subMu.Unlock()

	if active {
		// Block until we can send - never drop events here
		select {
		case ch <- logNotif:
		case <-s.done:
		}
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (s *LogStream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				// A failed ping surfaces as a read error in readLoop
				s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  int64  `json:"result"` // subscription ID
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext  `json:"context"`
	Value   wsLogsValue `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsLogsValue struct {
	Signature string      `json:"signature"`
	Logs      []string    `json:"logs"`
	Err       interface{} `json:"err"`
}
