package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jpc2301-netizen/todo-app/internal/task"
)

const (
	manifestEntry = "manifest.json"
	tasksEntry    = "tasks.json"

	// Archives never carry more than a task list; anything bigger is refused.
	maxEntrySize = 64 << 20
)

// Manifest describes the task list captured in an archive.
type Manifest struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	Tasks     int       `json:"tasks"`
	Active    int       `json:"active"`
	SHA256    string    `json:"sha256"`
}

func digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// readList loads the stored value for key and checks it decodes. A missing
// key is an empty list.
func readList(ctx context.Context, storage task.Storage, key string) (string, []task.Task, error) {
	raw, ok, err := storage.Get(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("read %q: %w", key, err)
	}
	if !ok {
		raw = "[]"
	}
	tasks, err := task.DecodeTasks(raw)
	if err != nil {
		return "", nil, fmt.Errorf("stored list under %q: %w", key, err)
	}
	return raw, tasks, nil
}

// WriteArchive writes the raw stored value plus its manifest as tar.gz.
func WriteArchive(w io.Writer, m Manifest, raw string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	for _, e := range []struct {
		name string
		body []byte
	}{
		{manifestEntry, mb},
		{tasksEntry, []byte(raw)},
	} {
		hdr := &tar.Header{
			Name:    e.name,
			Mode:    0o644,
			Size:    int64(len(e.body)),
			ModTime: m.CreatedAt,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := tw.Write(e.body); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

// ReadArchive reads an archive written by WriteArchive and verifies that the
// task list matches the manifest digest and decodes cleanly.
func ReadArchive(r io.Reader) (Manifest, string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return Manifest{}, "", err
	}
	defer gz.Close()

	var (
		m       Manifest
		raw     string
		sawMeta bool
		sawList bool
	)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Manifest{}, "", err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Size > maxEntrySize {
			return Manifest{}, "", fmt.Errorf("archive entry %s too large", hdr.Name)
		}
		body, err := io.ReadAll(io.LimitReader(tr, maxEntrySize))
		if err != nil {
			return Manifest{}, "", err
		}

		switch hdr.Name {
		case manifestEntry:
			if err := json.Unmarshal(body, &m); err != nil {
				return Manifest{}, "", fmt.Errorf("manifest: %w", err)
			}
			sawMeta = true
		case tasksEntry:
			raw = string(body)
			sawList = true
		default:
			return Manifest{}, "", fmt.Errorf("unexpected archive entry: %s", hdr.Name)
		}
	}

	if !sawMeta || !sawList {
		return Manifest{}, "", errors.New("archive is missing manifest or task list")
	}
	if got := digest(raw); got != m.SHA256 {
		return Manifest{}, "", fmt.Errorf("digest mismatch: manifest=%s archive=%s", m.SHA256, got)
	}
	if _, err := task.DecodeTasks(raw); err != nil {
		return Manifest{}, "", err
	}
	return m, raw, nil
}

// Backup captures the list stored under key into archivePath. The archive is
// written to a temp file and renamed into place.
func Backup(ctx context.Context, storage task.Storage, key, archivePath string, now time.Time) (Manifest, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return Manifest{}, errors.New("archivePath is required")
	}
	raw, tasks, err := readList(ctx, storage, key)
	if err != nil {
		return Manifest{}, err
	}
	m := Manifest{
		Key:       key,
		CreatedAt: now.UTC(),
		Tasks:     len(tasks),
		Active:    task.ActiveCount(tasks),
		SHA256:    digest(raw),
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return Manifest{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(archivePath), ".backup-*.tmp")
	if err != nil {
		return Manifest{}, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteArchive(tmp, m, raw); err != nil {
		_ = tmp.Close()
		return Manifest{}, err
	}
	if err := tmp.Close(); err != nil {
		return Manifest{}, err
	}
	if err := os.Rename(tmpName, archivePath); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Restore replaces the list stored under key with the archived one. The
// archive's own key is informational; the caller's key wins.
func Restore(ctx context.Context, storage task.Storage, key, archivePath string) (Manifest, error) {
	f, err := os.Open(filepath.Clean(strings.TrimSpace(archivePath)))
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()

	m, raw, err := ReadArchive(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("read archive: %w", err)
	}
	if err := storage.Set(ctx, key, raw); err != nil {
		return Manifest{}, fmt.Errorf("write %q: %w", key, err)
	}
	return m, nil
}

// DrillResult reports a backup and restore round trip.
type DrillResult struct {
	Archive string
	Digest  string
	Tasks   int
}

// Drill backs the list up into workDir, restores it into scratch storage and
// checks that the restored value matches the original byte for byte.
func Drill(ctx context.Context, storage task.Storage, key, workDir string, now time.Time) (DrillResult, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return DrillResult{}, err
	}
	archive := filepath.Join(workDir, "todo-drill-"+now.UTC().Format("20060102T150405Z")+".tar.gz")

	m, err := Backup(ctx, storage, key, archive, now)
	if err != nil {
		return DrillResult{}, err
	}
	scratch := task.NewMemoryStorage()
	if _, err := Restore(ctx, scratch, key, archive); err != nil {
		return DrillResult{}, err
	}

	srcRaw, _, err := readList(ctx, storage, key)
	if err != nil {
		return DrillResult{}, err
	}
	restoredRaw, _, err := readList(ctx, scratch, key)
	if err != nil {
		return DrillResult{}, err
	}
	if digest(srcRaw) != digest(restoredRaw) {
		return DrillResult{}, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", digest(srcRaw), digest(restoredRaw))
	}
	return DrillResult{Archive: archive, Digest: m.SHA256, Tasks: m.Tasks}, nil
}

// DefaultArchivePath names a timestamped archive under dir.
func DefaultArchivePath(dir string, now time.Time) string {
	return filepath.Join(dir, "todo-"+now.UTC().Format("20060102T150405Z")+".tar.gz")
}
