package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Since          string            `json:"since"`
	EventCounts    map[EventType]int `json:"event_counts"`
	Added          int               `json:"added"`
	AddedWithDue   int               `json:"added_with_due"`
	Completed      int               `json:"completed"`
	Reopened       int               `json:"reopened"`
	Edited         int               `json:"edited"`
	Deleted        int               `json:"deleted"`
	ClearedTasks   int               `json:"cleared_tasks"`
	CompletionRate float64           `json:"completion_rate"`
}

// CalculateStats summarizes applied intents since a point in time.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Since:       since.UTC().Format(time.RFC3339),
		EventCounts: make(map[EventType]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskAdded:
			stats.Added++
			if _, ok := metadata["due"].(string); ok {
				stats.AddedWithDue++
			}
		case EventTaskCompleted:
			stats.Completed++
		case EventTaskReopened:
			stats.Reopened++
		case EventTaskEdited:
			stats.Edited++
		case EventTaskDeleted:
			stats.Deleted++
		case EventCompletedCleared:
			// JSON numbers decode as float64.
			if n, ok := metadata["removed"].(float64); ok {
				stats.ClearedTasks += int(n)
			}
		}
	}

	if stats.Added > 0 {
		stats.CompletionRate = float64(stats.Completed-stats.Reopened) / float64(stats.Added)
	}

	return stats, nil
}
