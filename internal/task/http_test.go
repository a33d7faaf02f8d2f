package task

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskHandlerForTests(t *testing.T) (*Handler, *Store, *MemoryStorage) {
	t.Helper()
	mem := NewMemoryStorage()
	s, _ := newTestStore(t, mem)
	return NewHandler(s, quietLogger()), s, mem
}

func jsonReq(method, path string, body any) *http.Request {
	var b []byte
	if body != nil {
		b, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) View {
	t.Helper()
	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body=%s", rec.Body.String())
	return v
}

func TestTasksRoot_CreateAndList(t *testing.T) {
	h, _, _ := newTaskHandlerForTests(t)

	rec := httptest.NewRecorder()
	h.TasksRoot(rec, jsonReq(http.MethodPost, "/api/todos", map[string]any{"text": "pick up eggs"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeView(t, rec)
	assert.True(t, created.Applied)
	require.NotNil(t, created.Task)
	assert.Equal(t, "pick up eggs", created.Task.Text)

	rec = httptest.NewRecorder()
	h.TasksRoot(rec, jsonReq(http.MethodPost, "/api/todos", map[string]any{"text": "pay bill", "due": "2026-01-05"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.TasksRoot(rec, jsonReq(http.MethodGet, "/api/todos?filter=all", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	require.Len(t, v.Tasks, 2)
	assert.Equal(t, "pay bill", v.Tasks[0].Text, "dated tasks sort first")
	assert.Equal(t, 2, v.ActiveCount)
	assert.Equal(t, "2 items left", v.ItemsLeft)
	assert.Equal(t, FilterAll, v.Filter)
}

func TestTasksRoot_BlankTextIgnored(t *testing.T) {
	h, s, mem := newTaskHandlerForTests(t)

	rec := httptest.NewRecorder()
	h.TasksRoot(rec, jsonReq(http.MethodPost, "/api/todos", map[string]any{"text": "   "}))

	assert.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.False(t, v.Applied)
	assert.Nil(t, v.Task)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, mem.Writes())
}

func TestTasksRoot_BadInput(t *testing.T) {
	h, _, _ := newTaskHandlerForTests(t)

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{
			name: "bad json",
			req:  httptest.NewRequest(http.MethodPost, "/api/todos", bytes.NewBufferString("{")),
			code: http.StatusBadRequest,
		},
		{
			name: "bad due",
			req:  jsonReq(http.MethodPost, "/api/todos", map[string]any{"text": "x", "due": "next week"}),
			code: http.StatusBadRequest,
		},
		{
			name: "unknown field",
			req:  jsonReq(http.MethodPost, "/api/todos", map[string]any{"title": "x"}),
			code: http.StatusBadRequest,
		},
		{
			name: "method",
			req:  jsonReq(http.MethodPut, "/api/todos", nil),
			code: http.StatusMethodNotAllowed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.TasksRoot(rec, tc.req)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestTasksSub_ToggleEditDelete(t *testing.T) {
	h, s, _ := newTaskHandlerForTests(t)
	ctx := context.Background()
	task, _, err := s.Add(ctx, "draft", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodPost, "/api/todos/"+task.ID+"/toggle?filter=completed", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decodeView(t, rec)
	assert.True(t, v.Applied)
	assert.Equal(t, FilterCompleted, v.Filter)
	require.Len(t, v.Tasks, 1)
	assert.True(t, v.Tasks[0].Completed)
	assert.Equal(t, 0, v.ActiveCount)

	rec = httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodPatch, "/api/todos/"+task.ID, map[string]any{"text": "final"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v = decodeView(t, rec)
	assert.True(t, v.Applied)
	require.NotNil(t, v.Task)
	assert.Equal(t, "final", v.Task.Text)

	rec = httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodPatch, "/api/todos/"+task.ID, map[string]any{"text": ""}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeView(t, rec).Applied)
	got, _ := s.Get(task.ID)
	assert.Equal(t, "final", got.Text)

	rec = httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodDelete, "/api/todos/"+task.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeView(t, rec).Applied)

	rec = httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodDelete, "/api/todos/"+task.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code, "deleting twice is not an error")
	assert.False(t, decodeView(t, rec).Applied)
}

func TestTasksSub_ClearCompleted(t *testing.T) {
	h, s, _ := newTaskHandlerForTests(t)
	ctx := context.Background()
	a, _, _ := s.Add(ctx, "a", nil)
	_, _, _ = s.Add(ctx, "b", nil)
	_, _, _ = s.Toggle(ctx, a.ID)

	rec := httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodPost, "/api/todos/clear-completed", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decodeView(t, rec)
	assert.True(t, v.Applied)
	require.Len(t, v.Tasks, 1)
	assert.Equal(t, "b", v.Tasks[0].Text)

	rec = httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodGet, "/api/todos/clear-completed", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTasksSub_UnknownRoutes(t *testing.T) {
	h, _, _ := newTaskHandlerForTests(t)

	rec := httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodPost, "/api/todos/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodPost, "/api/todos/abc/archive", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodPatch, "/api/todos/abc", map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.TasksSub(rec, jsonReq(http.MethodPost, "/api/todos/missing/toggle", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeView(t, rec).Applied)
}

func TestTasksRoot_StorageFailure(t *testing.T) {
	fs := &failingStorage{MemoryStorage: NewMemoryStorage(), fail: true}
	s, _ := newTestStore(t, fs)
	h := NewHandler(s, quietLogger())

	rec := httptest.NewRecorder()
	h.TasksRoot(rec, jsonReq(http.MethodPost, "/api/todos", map[string]any{"text": "x"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, s.Len())
}
