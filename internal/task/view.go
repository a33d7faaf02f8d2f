package task

import (
	"fmt"
	"slices"
	"strings"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps a filter name to a Filter. Unknown or empty => all.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterActive:
		return FilterActive
	case FilterCompleted:
		return FilterCompleted
	default:
		return FilterAll
	}
}

func (f Filter) matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Visible returns the tasks to display for f: tasks with a due date first,
// earliest due first (ties keep their list order), then undated tasks newest
// first. The input is not modified and nothing is cached.
func Visible(tasks []Task, f Filter) []Task {
	withDue := make([]Task, 0, len(tasks))
	withoutDue := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !f.matches(t) {
			continue
		}
		if t.HasDue() {
			withDue = append(withDue, t)
		} else {
			withoutDue = append(withoutDue, t)
		}
	}

	slices.SortStableFunc(withDue, func(a, b Task) int {
		return a.Due.Compare(*b.Due)
	})
	slices.SortStableFunc(withoutDue, func(a, b Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return append(withDue, withoutDue...)
}

// ActiveCount counts not-completed tasks, regardless of any filter.
func ActiveCount(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// ItemsLeft renders the "N items left" counter.
func ItemsLeft(n int) string {
	if n == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", n)
}
