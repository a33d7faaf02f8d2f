package telemetry

import "time"

type EventType string

const (
	EventTaskAdded        EventType = "task_added"
	EventTaskCompleted    EventType = "task_completed"
	EventTaskReopened     EventType = "task_reopened"
	EventTaskEdited       EventType = "task_edited"
	EventTaskDeleted      EventType = "task_deleted"
	EventCompletedCleared EventType = "completed_cleared"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
