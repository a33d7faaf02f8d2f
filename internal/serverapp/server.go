package serverapp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jpc2301-netizen/todo-app/internal/config"
	"github.com/jpc2301-netizen/todo-app/internal/httpmw"
	"github.com/jpc2301-netizen/todo-app/internal/task"
	"github.com/jpc2301-netizen/todo-app/internal/telemetry"
	staticfiles "github.com/jpc2301-netizen/todo-app/static"
)

type Options struct {
	Config *config.Config
	Store  *task.Store
	// Events backs /api/stats. Nil disables the endpoint.
	Events telemetry.Repository
	// Metrics backs /metrics. Nil disables the endpoint.
	Metrics *telemetry.Metrics
	Logger *slog.Logger
	// Now is used by health endpoints; defaults to time.Now.
	Now func() time.Time
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()

	var assets fs.FS = staticfiles.EmbeddedFS()
	if opts.Config.Server.DevStatic {
		assets = os.DirFS(opts.Config.Server.StaticDir)
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(assets))))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "todo-app",
			"time":    opts.Now().UTC().Format(time.RFC3339),
		})
	})

	taskHandler := task.NewHandler(opts.Store, opts.Logger)
	mux.HandleFunc("/api/todos", taskHandler.TasksRoot)
	mux.HandleFunc("/api/todos/", taskHandler.TasksSub)

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := taskHandler.Ready(r); err != nil {
			opts.Logger.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "todo-app",
			"backend": opts.Config.Storage.Backend,
			"time":    opts.Now().UTC().Format(time.RFC3339),
		})
	})

	if opts.Metrics != nil {
		opts.Metrics.ObserveTasks(taskHandler.Counts)
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	if opts.Events != nil {
		mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			since := time.Time{}
			if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
				d, err := time.ParseDuration(raw)
				if err != nil || d <= 0 {
					writeJSON(w, http.StatusBadRequest, map[string]any{"error": "since must be a positive duration"})
					return
				}
				since = opts.Now().Add(-d)
			}
			events, err := opts.Events.GetEvents(since, nil)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
				return
			}
			stats, err := telemetry.CalculateStats(events, since)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, stats)
		})
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		http.ServeFileFS(w, r, assets, "index.html")
	})

	return httpmw.Chain(
		mux,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRecover(opts.Logger),
		httpmw.LoopbackOnly,
	), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
