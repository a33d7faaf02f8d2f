package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTasks_WireFormat(t *testing.T) {
	due := Date{Year: 2025, Month: time.January, Day: 10}
	tasks := []Task{
		{ID: "a", Text: "pay bill", Due: &due, CreatedAt: time.UnixMilli(100)},
		{ID: "b", Text: "water plants", Completed: true, CreatedAt: time.UnixMilli(200)},
	}

	raw, err := EncodeTasks(tasks)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0]["id"])
	assert.Equal(t, "pay bill", got[0]["text"])
	assert.Equal(t, false, got[0]["completed"])
	assert.Equal(t, "2025-01-10", got[0]["due"])
	assert.Equal(t, float64(100), got[0]["createdAt"])

	assert.Nil(t, got[1]["due"])
	assert.Equal(t, true, got[1]["completed"])
}

func TestDecodeTasks_AcceptsAbsentOrNullDue(t *testing.T) {
	raw := `[
		{"id":"a","text":"one","completed":false,"createdAt":1},
		{"id":"b","text":"two","completed":true,"createdAt":2,"due":null},
		{"id":"c","text":"three","completed":false,"createdAt":3,"due":"2025-01-05"}
	]`

	tasks, err := DecodeTasks(raw)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Nil(t, tasks[0].Due)
	assert.Nil(t, tasks[1].Due)
	require.NotNil(t, tasks[2].Due)
	assert.Equal(t, "2025-01-05", tasks[2].Due.String())
	assert.Equal(t, []string{"a", "b", "c"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestDecodeTasks_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{{nope"},
		{name: "object not array", raw: `{"id":"a"}`},
		{name: "missing id", raw: `[{"text":"x","createdAt":1}]`},
		{name: "blank text", raw: `[{"id":"a","text":"  ","createdAt":1}]`},
		{name: "bad due", raw: `[{"id":"a","text":"x","createdAt":1,"due":"tomorrow"}]`},
		{name: "duplicate id", raw: `[{"id":"a","text":"x","createdAt":1},{"id":"a","text":"y","createdAt":2}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeTasks(tc.raw)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeTasks_EmptyAndNull(t *testing.T) {
	tasks, err := DecodeTasks("")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = DecodeTasks("null")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTask_JSONRoundTrip(t *testing.T) {
	due := Date{Year: 2025, Month: time.June, Day: 30}
	in := Task{ID: "a", Text: "ship it", Due: &due, CreatedAt: time.UnixMilli(1_700_000_000_123)}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Task
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}
