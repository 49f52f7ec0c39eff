package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Zone Tests
// ============================================================================

func TestParseZone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Zone
		wantErr  bool
	}{
		{"confused", ZoneConfused, false},
		{"partial", ZonePartial, false},
		{"clear", ZoneClear, false},
		{" Clear ", ZoneClear, false},
		{"wwtf", ZoneConfused, false},
		{"wtf", ZonePartial, false},
		{"clarity", ZoneClear, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseZone(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidZone, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, got)
	}
}

func TestZone_UnmarshalLegacyNames(t *testing.T) {
	t.Parallel()

	var notes []Note
	doc := `[{"id":"note-1","text":"a","zone":"wwtf","nextActions":[]},{"id":"note-2","text":"b","zone":"clarity"}]`
	require.NoError(t, json.Unmarshal([]byte(doc), &notes))

	assert.Equal(t, ZoneConfused, notes[0].Zone)
	assert.Equal(t, ZoneClear, notes[1].Zone)
	assert.NotNil(t, notes[1].NextActions, "missing action list should decode as empty")
}

func TestZone_UnmarshalRejectsUnknown(t *testing.T) {
	t.Parallel()

	var n Note
	err := json.Unmarshal([]byte(`{"id":"note-1","text":"a","zone":"elsewhere"}`), &n)
	assert.ErrorIs(t, err, ErrInvalidZone)
}

// ============================================================================
// Note Tests
// ============================================================================

func TestNote_EncodesEmptyActionsAsArray(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NormalizeNotes([]Note{{ID: "note-1", Text: "x", Zone: ZoneConfused}}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"note-1","text":"x","zone":"confused","nextActions":[]}]`, string(data))

	data, err = json.Marshal(NormalizeNotes(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestNote_AcceptsFiveWhysKey(t *testing.T) {
	t.Parallel()

	var n Note
	require.NoError(t, json.Unmarshal([]byte(`{"id":"n","text":"t","zone":"wtf","fiveWhys":{"why1":"because"}}`), &n))
	require.NotNil(t, n.Reflection)
	assert.Equal(t, "because", n.Reflection.Why1)
}

func TestNote_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := Note{
		ID:          "n",
		Zone:        ZoneConfused,
		NextActions: []Action{{ID: "a", Text: "do"}},
		Reflection:  &FiveWhys{Why1: "x"},
	}
	c := orig.Clone()
	c.NextActions[0].Completed = true
	c.Reflection.Why1 = "y"

	assert.False(t, orig.NextActions[0].Completed)
	assert.Equal(t, "x", orig.Reflection.Why1)
}

func TestValidateNotes(t *testing.T) {
	t.Parallel()

	ok := []Note{{ID: "a", Zone: ZoneClear}, {ID: "b", Zone: ZonePartial}}
	assert.NoError(t, ValidateNotes(ok))

	dup := []Note{{ID: "a", Zone: ZoneClear}, {ID: "a", Zone: ZoneClear}}
	assert.ErrorIs(t, ValidateNotes(dup), ErrInvalidNote)

	badZone := []Note{{ID: "a", Zone: "nowhere"}}
	assert.ErrorIs(t, ValidateNotes(badZone), ErrInvalidNote)
}

func TestFiveWhys_HasContent(t *testing.T) {
	t.Parallel()

	assert.False(t, FiveWhys{}.HasContent())
	assert.False(t, FiveWhys{Why3: "   "}.HasContent())
	assert.True(t, FiveWhys{Why5: "root cause"}.HasContent())
}

func TestNote_OpenActions(t *testing.T) {
	t.Parallel()

	n := Note{NextActions: []Action{{Completed: true}, {}, {}}}
	assert.Equal(t, 2, n.OpenActions())
}

// ============================================================================
// Error Tests
// ============================================================================

func TestStoreError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewStoreError("update content", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "update content: connection refused", err.Error())
	assert.Nil(t, NewStoreError("noop", nil))
}

func TestRandomPrompt(t *testing.T) {
	t.Parallel()

	p := RandomPrompt()
	assert.Contains(t, InsightPrompts, p)
}
