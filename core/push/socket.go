package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// frame is the wire shape of one push delivery.
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Socket is a Source backed by a websocket connection. It decodes frames
// and dispatches them by event name. It does not reconnect: that is the
// transport collaborator's job, and a fresh Dial announces Connected to
// whoever is already subscribed.
type Socket struct {
	d      *dispatcher
	conn   *websocket.Conn
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// Dial connects to the push endpoint and starts the read loop. The
// Connected pseudo-event fires once the connection is up.
func Dial(ctx context.Context, cfg Config, logger *zap.Logger) (*Socket, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("push url is not configured")
	}
	opts := &websocket.DialOptions{}
	if cfg.Token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + cfg.Token}}
	}
	conn, _, err := websocket.Dial(ctx, cfg.URL, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to dial push endpoint: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	s := &Socket{
		d:      newDispatcher(),
		conn:   conn,
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.readLoop(readCtx)
	s.d.dispatch(Event{Name: Connected})
	return s, nil
}

// Subscribe implements Source.
func (s *Socket) Subscribe(name string, h Handler) (Subscription, error) {
	return s.d.subscribe(name, h), nil
}

// Close tears the connection down and waits for the read loop to exit.
func (s *Socket) Close() error {
	s.cancel()
	err := s.conn.Close(websocket.StatusNormalClosure, "shutdown")
	<-s.done
	return err
}

func (s *Socket) readLoop(ctx context.Context) {
	defer close(s.done)
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("push connection closed", zap.Error(err))
			}
			return
		}
		ev, err := parseFrame(data)
		if err != nil {
			s.logger.Warn("dropping malformed push frame", zap.Error(err))
			continue
		}
		s.d.dispatch(ev)
	}
}

func parseFrame(data []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Event{}, fmt.Errorf("invalid frame: %w", err)
	}
	if f.Event == "" {
		return Event{}, fmt.Errorf("frame is missing an event name")
	}
	return Event{Name: f.Event, Payload: f.Payload}, nil
}
