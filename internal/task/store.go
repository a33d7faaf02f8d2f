package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpc2301-netizen/todo-app/internal/telemetry"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type Options struct {
	Storage Storage
	// Key defaults to DefaultStorageKey.
	Key    string
	Clock  Clock
	NewID  func() string
	Logger *slog.Logger
	Events telemetry.Repository
}

// Store owns the ordered task list. It is not safe for concurrent use;
// callers run intents one at a time.
//
// Every applied mutation builds a fresh slice, writes it to Storage and only
// then replaces the in-memory list, so a failed write leaves the store as it
// was before the call. Rejected input and unknown ids never touch Storage.
type Store struct {
	storage Storage
	key     string
	clock   Clock
	newID   func() string
	logger  *slog.Logger
	events  telemetry.Repository

	tasks []Task
}

// Open builds a store and loads the persisted list once. A missing,
// unreadable or malformed value yields an empty list.
func Open(ctx context.Context, opts Options) *Store {
	s := &Store{
		storage: opts.Storage,
		key:     opts.Key,
		clock:   opts.Clock,
		newID:   opts.NewID,
		logger:  opts.Logger,
		events:  opts.Events,
		tasks:   []Task{},
	}
	if s.storage == nil {
		s.storage = NewMemoryStorage()
	}
	if s.key == "" {
		s.key = DefaultStorageKey
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.newID == nil {
		s.newID = NewID
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.tasks = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []Task {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("load tasks failed, starting empty", "key", s.key, "error", err)
		return []Task{}
	}
	if !ok {
		return []Task{}
	}
	tasks, err := DecodeTasks(raw)
	if err != nil {
		s.logger.Warn("stored tasks malformed, starting empty", "key", s.key, "error", err)
		return []Task{}
	}
	s.logger.Debug("tasks loaded", "key", s.key, "count", len(tasks))
	return tasks
}

func (s *Store) commit(ctx context.Context, next []Task) error {
	raw, err := EncodeTasks(next)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("persist tasks: %w", err)
	}
	s.tasks = next
	return nil
}

func (s *Store) record(ev telemetry.EventType, meta telemetry.EventMetadata) {
	s.logger.Debug("intent applied", "event", string(ev), "tasks", len(s.tasks))
	if s.events == nil {
		return
	}
	if err := s.events.RecordEvent(ev, meta); err != nil {
		s.logger.Warn("record event failed", "event", string(ev), "error", err)
	}
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Add prepends a new task. Blank text is ignored and reported as not added.
func (s *Store) Add(ctx context.Context, text string, due *Date) (Task, bool, error) {
	text, ok := normalizeText(text)
	if !ok {
		return Task{}, false, nil
	}

	id := s.newID()
	if s.indexOf(id) >= 0 {
		return Task{}, false, fmt.Errorf("generated duplicate task id %q", id)
	}
	now := time.UnixMilli(s.clock.Now().UnixMilli())
	t := NewTask(id, text, due, now)

	next := make([]Task, 0, len(s.tasks)+1)
	next = append(next, t)
	next = append(next, s.tasks...)
	if err := s.commit(ctx, next); err != nil {
		return Task{}, false, err
	}

	meta := telemetry.EventMetadata{"task_id": t.ID}
	if t.Due != nil {
		meta["due"] = t.Due.String()
	}
	s.record(telemetry.EventTaskAdded, meta)
	return t.clone(), true, nil
}

// Toggle flips the completed flag of the task with id.
func (s *Store) Toggle(ctx context.Context, id string) (Task, bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false, nil
	}

	updated := s.tasks[i].withCompleted(!s.tasks[i].Completed)
	if err := s.commit(ctx, s.replaceAt(i, updated)); err != nil {
		return Task{}, false, err
	}

	ev := telemetry.EventTaskReopened
	if updated.Completed {
		ev = telemetry.EventTaskCompleted
	}
	s.record(ev, telemetry.EventMetadata{"task_id": id})
	return updated.clone(), true, nil
}

// EditText replaces the task's text. Blank text abandons the edit.
func (s *Store) EditText(ctx context.Context, id, text string) (Task, bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false, nil
	}
	text, ok := normalizeText(text)
	if !ok {
		return s.tasks[i].clone(), false, nil
	}

	updated := s.tasks[i].withText(text)
	if err := s.commit(ctx, s.replaceAt(i, updated)); err != nil {
		return Task{}, false, err
	}
	s.record(telemetry.EventTaskEdited, telemetry.EventMetadata{"task_id": id})
	return updated.clone(), true, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	s.record(telemetry.EventTaskDeleted, telemetry.EventMetadata{"task_id": id})
	return true, nil
}

// ClearCompleted removes every completed task and returns how many went.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	next := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			next = append(next, t)
		}
	}
	removed := len(s.tasks) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}
	s.record(telemetry.EventCompletedCleared, telemetry.EventMetadata{"removed": removed})
	return removed, nil
}

func (s *Store) Get(id string) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].clone(), true
}

// Snapshot returns a copy of the ordered list, newest addition first.
func (s *Store) Snapshot() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

func (s *Store) Len() int { return len(s.tasks) }

func (s *Store) ActiveCount() int { return ActiveCount(s.tasks) }

// Visible projects the current list through f.
func (s *Store) Visible(f Filter) []Task { return Visible(s.Snapshot(), f) }

// Ping reports whether the backing storage is reachable.
func (s *Store) Ping(ctx context.Context) error {
	p, ok := s.storage.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("storage unavailable: %w", err)
	}
	return nil
}

func (s *Store) replaceAt(i int, t Task) []Task {
	next := make([]Task, len(s.tasks))
	copy(next, s.tasks)
	next[i] = t
	return next
}
