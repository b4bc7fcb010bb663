package push

import (
	"encoding/json"
	"sync"
)

// Connected is the pseudo-event announced after the transport (re)attaches.
// Subscribers react by re-subscribing to their event names; nothing more.
const Connected = "connected"

// Event is one push delivery.
type Event struct {
	Name    string
	Payload json.RawMessage
}

// Handler consumes events for a subscribed name.
type Handler func(Event)

// Subscription releases a handler when closed.
type Subscription interface {
	Close() error
}

// Source delivers named events to subscribed handlers.
type Source interface {
	Subscribe(name string, h Handler) (Subscription, error)
}

// dispatcher fans events out to handlers by name. Shared by Socket and
// Fake.
type dispatcher struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]Handler
}

func newDispatcher() *dispatcher {
	return &dispatcher{subs: make(map[string]map[int]Handler)}
}

func (d *dispatcher) subscribe(name string, h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subs[name] == nil {
		d.subs[name] = make(map[int]Handler)
	}
	id := d.next
	d.next++
	d.subs[name][id] = h
	return &subscription{d: d, name: name, id: id}
}

func (d *dispatcher) dispatch(ev Event) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.subs[ev.Name]))
	for _, h := range d.subs[ev.Name] {
		handlers = append(handlers, h)
	}
	d.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}

type subscription struct {
	d    *dispatcher
	name string
	id   int
}

func (s *subscription) Close() error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if handlers, ok := s.d.subs[s.name]; ok {
		delete(handlers, s.id)
	}
	return nil
}

// Fake is an in-memory Source for tests and offline runs.
type Fake struct {
	d *dispatcher
}

// NewFake creates an empty fake source.
func NewFake() *Fake {
	return &Fake{d: newDispatcher()}
}

// Subscribe implements Source.
func (f *Fake) Subscribe(name string, h Handler) (Subscription, error) {
	return f.d.subscribe(name, h), nil
}

// Emit delivers an event synchronously to current subscribers. The payload
// is marshalled to JSON unless it already is raw JSON.
func (f *Fake) Emit(name string, payload any) error {
	raw, err := toRaw(payload)
	if err != nil {
		return err
	}
	f.d.dispatch(Event{Name: name, Payload: raw})
	return nil
}

func toRaw(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return json.RawMessage(p), nil
	default:
		return json.Marshal(payload)
	}
}
