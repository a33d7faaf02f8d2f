package telemetry

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultEventLimit bounds how many events a MemoryRepository retains.
const DefaultEventLimit = 1000

// Repository records applied intents.
type Repository interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
	GetEvents(since time.Time, eventTypes []EventType) ([]Event, error)
	Clear() error
}

// MemoryRepository keeps the most recent intent events in memory for the
// life of the process. Older events are dropped once limit is reached.
type MemoryRepository struct {
	mu     sync.RWMutex
	events []Event
	nextID int
	limit  int
	now    func() time.Time
}

func NewMemoryRepository(limit int) *MemoryRepository {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	return &MemoryRepository{
		events: make([]Event, 0),
		nextID: 1,
		limit:  limit,
		now:    time.Now,
	}
}

func (r *MemoryRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event{
		ID:        r.nextID,
		Type:      eventType,
		Timestamp: r.now(),
		Metadata:  string(metadataJSON),
	})
	r.nextID++

	if over := len(r.events) - r.limit; over > 0 {
		r.events = append(r.events[:0:0], r.events[over:]...)
	}
	return nil
}

// GetEvents returns events at or after since, optionally limited to types.
func (r *MemoryRepository) GetEvents(since time.Time, eventTypes []EventType) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeFilter := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		typeFilter[t] = true
	}

	result := make([]Event, 0, len(r.events))
	for _, event := range r.events {
		if event.Timestamp.Before(since) {
			continue
		}
		if len(typeFilter) > 0 && !typeFilter[event.Type] {
			continue
		}
		result = append(result, event)
	}
	return result, nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make([]Event, 0)
	r.nextID = 1
	return nil
}
