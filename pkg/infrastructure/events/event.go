package events

import (
	"time"
)

// Event is one entry of the run journal
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
	Position() int
}

// EventHandler receives events of the types it subscribed to
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore appends events to named streams and replays them
type EventStore interface {
	AppendEvent(streamID string, event Event) (Event, error)
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

type BaseEvent struct {
	EventType     string
	Stream        string
	EventData     interface{}
	EventTime     time.Time
	EventVersion  int
	EventPosition int
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

// Position is the global sequence number assigned by the store, from 1
func (e BaseEvent) Position() int {
	return e.EventPosition
}

// NewEvent creates an unversioned event stamped with the current time
func NewEvent(eventType, streamID string, data interface{}) Event {
	return BaseEvent{
		EventType: eventType,
		Stream:    streamID,
		EventData: data,
		EventTime: time.Now(),
	}
}

// HandlerFunc adapts a function to EventHandler for the given types
type HandlerFunc struct {
	Types []string
	Fn    func(Event) error
}

func (h *HandlerFunc) Handle(event Event) error {
	return h.Fn(event)
}

func (h *HandlerFunc) CanHandle(eventType string) bool {
	for _, t := range h.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
