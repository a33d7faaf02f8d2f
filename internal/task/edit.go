package task

import "context"

// EditSession is one in-place text edit of a task. It finalizes exactly
// once: Commit (Enter, or blur) applies the text, Cancel (Escape) keeps the
// original. Any Commit or Cancel after that is ignored, so a blur that
// follows an Escape does not save.
type EditSession struct {
	store    *Store
	id       string
	original string
	done     bool
}

// BeginEdit starts editing id. It reports false if the task does not exist.
func BeginEdit(s *Store, id string) (*EditSession, bool) {
	t, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return &EditSession{store: s, id: id, original: t.Text}, true
}

func (e *EditSession) ID() string       { return e.id }
func (e *EditSession) Original() string { return e.original }
func (e *EditSession) Done() bool       { return e.done }

// Commit applies text and reports whether the new text was applied.
// Blank text finalizes the session without applying anything. A storage
// error leaves the session open so the caller may retry.
func (e *EditSession) Commit(ctx context.Context, text string) (bool, error) {
	if e.done {
		return false, nil
	}
	_, applied, err := e.store.EditText(ctx, e.id, text)
	if err != nil {
		return false, err
	}
	e.done = true
	return applied, nil
}

func (e *EditSession) Cancel() {
	e.done = true
}
