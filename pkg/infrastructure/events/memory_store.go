package events

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultRetention is the number of events kept by NewInMemoryEventStore
const DefaultRetention = 1000

// InMemoryEventStore keeps the most recent events in memory. Older events are
// dropped once the retention limit is reached; positions keep increasing.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	position    int
	allEvents   []Event
	retention   int
	logger      *zap.Logger
}

var _ EventStore = (*InMemoryEventStore)(nil)

// NewInMemoryEventStore creates a store. A retention <= 0 selects DefaultRetention.
func NewInMemoryEventStore(retention int, logger *zap.Logger) *InMemoryEventStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		retention:   retention,
		logger:      logger,
	}
}

// AppendEvent stores the event with its stream version and global position
// and returns the stored copy. Handlers run on the caller's goroutine after
// the store lock is released.
func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) (Event, error) {
	s.mutex.Lock()
	s.position++
	stored := BaseEvent{
		EventType:     event.Type(),
		Stream:        streamID,
		EventData:     event.Data(),
		EventTime:     event.Timestamp(),
		EventVersion:  s.streamVersion(streamID) + 1,
		EventPosition: s.position,
	}

	s.streams[streamID] = append(s.streams[streamID], stored)
	s.allEvents = append(s.allEvents, stored)
	s.trim()
	handlers := append([]EventHandler(nil), s.subscribers[stored.EventType]...)
	s.mutex.Unlock()

	s.notify(handlers, stored)
	return stored, nil
}

func (s *InMemoryEventStore) streamVersion(streamID string) int {
	events := s.streams[streamID]
	if len(events) == 0 {
		return 0
	}
	return events[len(events)-1].Version()
}

// trim drops the oldest events beyond the retention limit
func (s *InMemoryEventStore) trim() {
	excess := len(s.allEvents) - s.retention
	if excess <= 0 {
		return
	}
	for _, e := range s.allEvents[:excess] {
		stream := s.streams[e.StreamID()]
		s.streams[e.StreamID()] = stream[1:]
		if len(stream) == 1 {
			delete(s.streams, e.StreamID())
		}
	}
	s.allEvents = append([]Event(nil), s.allEvents[excess:]...)
}

// ReadEvents returns the retained events of a stream with version >= fromVersion
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []Event
	for _, e := range s.streams[streamID] {
		if e.Version() >= fromVersion {
			out = append(out, e)
		}
	}
	if out == nil {
		return []Event{}, nil
	}
	return out, nil
}

// ReadAllEvents returns the retained events with position > fromPosition
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Event, 0)
	for _, e := range s.allEvents {
		if e.Position() > fromPosition {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}
	return nil
}

func (s *InMemoryEventStore) notify(handlers []EventHandler, event Event) {
	for _, h := range handlers {
		if !h.CanHandle(event.Type()) {
			continue
		}
		if err := h.Handle(event); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("type", event.Type()),
				zap.Int("position", event.Position()),
				zap.Error(err))
		}
	}
}
