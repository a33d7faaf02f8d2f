package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse due date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// ParseOptionalDate treats a blank string as "no due date".
func ParseOptionalDate(s string) (*Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Task values are never edited in place once they are in a Store; the
// with* helpers return modified copies that keep the same ID.
type Task struct {
	ID        string
	Text      string
	Completed bool
	Due       *Date
	CreatedAt time.Time
}

func NewTask(id, text string, due *Date, now time.Time) Task {
	return Task{
		ID:        id,
		Text:      strings.TrimSpace(text),
		Completed: false,
		Due:       copyDate(due),
		CreatedAt: now,
	}
}

func NewID() string {
	return uuid.NewString()
}

func (t Task) HasDue() bool { return t.Due != nil }

func (t Task) clone() Task {
	t.Due = copyDate(t.Due)
	return t
}

func (t Task) withCompleted(done bool) Task {
	t = t.clone()
	t.Completed = done
	return t
}

func (t Task) withText(text string) Task {
	t = t.clone()
	t.Text = text
	return t
}

func copyDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// normalizeText returns the trimmed text and whether it is usable.
func normalizeText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
