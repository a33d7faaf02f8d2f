package task

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// Handler exposes the store's intents over JSON. Requests are applied one at
// a time in arrival order; the Store itself does no locking.
type Handler struct {
	mu     sync.Mutex
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

// View is the payload every endpoint answers with.
type View struct {
	Tasks       []Task `json:"tasks"`
	ActiveCount int    `json:"activeCount"`
	ItemsLeft   string `json:"itemsLeft"`
	Filter      Filter `json:"filter"`
	Applied     bool   `json:"applied"`
	Task        *Task  `json:"task,omitempty"`
}

func (h *Handler) viewLocked(r *http.Request, applied bool) View {
	f := ParseFilter(r.URL.Query().Get("filter"))
	return View{
		Tasks:       h.store.Visible(f),
		ActiveCount: h.store.ActiveCount(),
		ItemsLeft:   ItemsLeft(h.store.ActiveCount()),
		Filter:      f,
		Applied:     applied,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func (h *Handler) storageFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("intent failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeErr(w, http.StatusInternalServerError, "could not save tasks")
}

// /api/todos  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.viewLocked(r, false))
		return

	case http.MethodPost:
		var in struct {
			Text string `json:"text"`
			Due  string `json:"due"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		due, err := ParseOptionalDate(in.Due)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "due must be YYYY-MM-DD")
			return
		}

		t, added, err := h.store.Add(r.Context(), in.Text, due)
		if err != nil {
			h.storageFailed(w, r, err)
			return
		}
		v := h.viewLocked(r, added)
		if !added {
			writeJSON(w, http.StatusOK, v)
			return
		}
		v.Task = &t
		writeJSON(w, http.StatusCreated, v)
		return

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
}

// /api/todos/{id}, /api/todos/{id}/toggle, /api/todos/clear-completed
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimPrefix(r.URL.Path, "/api/todos/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	parts := strings.Split(tail, "/")

	if len(parts) == 1 && parts[0] == "clear-completed" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		removed, err := h.store.ClearCompleted(r.Context())
		if err != nil {
			h.storageFailed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.viewLocked(r, removed > 0))
		return
	}

	id := parts[0]

	// /api/todos/{id}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodPatch:
			var in struct {
				Text *string `json:"text"`
			}
			if err := decodeJSON(r, &in); err != nil {
				writeErr(w, http.StatusBadRequest, "bad json")
				return
			}
			if in.Text == nil {
				writeErr(w, http.StatusBadRequest, `missing field "text"`)
				return
			}
			t, applied, err := h.store.EditText(r.Context(), id, *in.Text)
			if err != nil {
				h.storageFailed(w, r, err)
				return
			}
			v := h.viewLocked(r, applied)
			if applied {
				v.Task = &t
			}
			writeJSON(w, http.StatusOK, v)
			return

		case http.MethodDelete:
			deleted, err := h.store.Delete(r.Context(), id)
			if err != nil {
				h.storageFailed(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, h.viewLocked(r, deleted))
			return

		default:
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
	}

	// /api/todos/{id}/toggle
	if len(parts) == 2 && parts[1] == "toggle" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		t, toggled, err := h.store.Toggle(r.Context(), id)
		if err != nil {
			h.storageFailed(w, r, err)
			return
		}
		v := h.viewLocked(r, toggled)
		if toggled {
			v.Task = &t
		}
		writeJSON(w, http.StatusOK, v)
		return
	}

	writeErr(w, http.StatusNotFound, "not found")
}

// Counts reports list totals under the handler lock, for metrics scrapes.
func (h *Handler) Counts() (total, active int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Len(), h.store.ActiveCount()
}

// Ready reports storage readiness for /readyz.
func (h *Handler) Ready(r *http.Request) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Ping(r.Context())
}
