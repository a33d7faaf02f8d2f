package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformed = errors.New("malformed task data")

// record is the stored/wire shape of a Task. createdAt is epoch milliseconds
// and due is "YYYY-MM-DD" or null.
type record struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	Due       *string `json:"due"`
	CreatedAt int64   `json:"createdAt"`
}

func toRecord(t Task) record {
	r := record{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.UnixMilli(),
	}
	if t.Due != nil {
		s := t.Due.String()
		r.Due = &s
	}
	return r
}

func fromRecord(r record) (Task, error) {
	t := Task{
		ID:        r.ID,
		Text:      r.Text,
		Completed: r.Completed,
		CreatedAt: time.UnixMilli(r.CreatedAt),
	}
	if r.Due != nil {
		due, err := ParseOptionalDate(*r.Due)
		if err != nil {
			return Task{}, err
		}
		t.Due = due
	}
	return t, nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(toRecord(t))
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	parsed, err := fromRecord(r)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// EncodeTasks serializes the full ordered collection.
func EncodeTasks(tasks []Task) (string, error) {
	out := make([]record, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toRecord(t))
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeTasks parses a stored collection. Any record without an id or text,
// with an unparseable due date, or duplicating an earlier id makes the whole
// value malformed.
func DecodeTasks(raw string) ([]Task, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Task{}, nil
	}

	var recs []record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]Task, 0, len(recs))
	seen := make(map[string]bool, len(recs))
	for i, r := range recs {
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrMalformed, i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformed, r.ID)
		}
		seen[r.ID] = true

		text, ok := normalizeText(r.Text)
		if !ok {
			return nil, fmt.Errorf("%w: record %q has empty text", ErrMalformed, r.ID)
		}
		r.Text = text

		t, err := fromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		out = append(out, t)
	}
	return out, nil
}
