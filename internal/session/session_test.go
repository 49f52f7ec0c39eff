package session

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/circles/internal/models"
)

func seedNotes() []models.Note {
	return []models.Note{
		{ID: "note-1", Text: "why is the build slow", Zone: models.ZoneConfused, NextActions: []models.Action{
			{ID: "action-1", Text: "profile it"},
		}},
		{ID: "note-2", Text: "caching", Zone: models.ZonePartial, NextActions: []models.Action{}},
	}
}

// ============================================================================
// Mutation Tests
// ============================================================================

func TestAddNote_Defaults(t *testing.T) {
	t.Parallel()

	out := AddNote(nil, "x")
	require.Len(t, out, 1)
	n := out[0]
	assert.Equal(t, "x", n.Text)
	assert.Equal(t, models.ZoneConfused, n.Zone)
	assert.NotNil(t, n.NextActions)
	assert.Empty(t, n.NextActions)
	assert.Nil(t, n.Reflection)
	assert.True(t, strings.HasPrefix(n.ID, "note-"))
}

func TestAddNote_BlankTextIsNoop(t *testing.T) {
	t.Parallel()

	in := seedNotes()
	for _, text := range []string{"", "   ", "\t\n"} {
		out := AddNote(in, text)
		assert.Len(t, out, len(in), "text %q", text)
	}
}

func TestAddNote_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := seedNotes()
	before := models.CloneNotes(in)
	_ = AddNote(in, "new")
	_ = MoveNote(in, "note-1", models.ZoneClear)
	_ = AddAction(in, "note-1", "more")
	_ = ToggleAction(in, "note-1", "action-1")
	_ = SaveReflection(in, "note-2", models.FiveWhys{Why1: "a"})

	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestMoveNote(t *testing.T) {
	t.Parallel()

	in := seedNotes()
	out := MoveNote(in, "note-1", models.ZoneClear)
	assert.Equal(t, models.ZoneClear, out[0].Zone)
	assert.Equal(t, models.ZonePartial, out[1].Zone)

	assert.Equal(t, in, MoveNote(in, "missing", models.ZoneClear))
	assert.Equal(t, in, MoveNote(in, "note-1", models.Zone("sideways")))
}

func TestAddAction(t *testing.T) {
	t.Parallel()

	out := AddAction(seedNotes(), "note-2", "read the docs")
	require.Len(t, out[1].NextActions, 1)
	a := out[1].NextActions[0]
	assert.Equal(t, "read the docs", a.Text)
	assert.False(t, a.Completed)
	assert.True(t, strings.HasPrefix(a.ID, "action-"))

	in := seedNotes()
	assert.Equal(t, in, AddAction(in, "note-2", " "))
	assert.Equal(t, in, AddAction(in, "missing", "x"))
}

func TestToggleAction_TwiceRestores(t *testing.T) {
	t.Parallel()

	in := seedNotes()
	once := ToggleAction(in, "note-1", "action-1")
	assert.True(t, once[0].NextActions[0].Completed)

	twice := ToggleAction(once, "note-1", "action-1")
	if diff := cmp.Diff(in, twice); diff != "" {
		t.Errorf("toggle twice changed notes (-want +got):\n%s", diff)
	}
}

func TestToggleAction_UnknownIDs(t *testing.T) {
	t.Parallel()

	in := seedNotes()
	assert.Equal(t, in, ToggleAction(in, "note-1", "nope"))
	assert.Equal(t, in, ToggleAction(in, "nope", "action-1"))
}

func TestSaveReflection(t *testing.T) {
	t.Parallel()

	data := models.FiveWhys{Why1: "a", Why2: "b"}
	out := SaveReflection(seedNotes(), "note-1", data)
	require.NotNil(t, out[0].Reflection)
	assert.Equal(t, data, *out[0].Reflection)
}

// Mutations on different notes commute.
func TestMutations_Commute(t *testing.T) {
	t.Parallel()

	f := func(n []models.Note) []models.Note { return MoveNote(n, "note-1", models.ZoneClear) }
	g := func(n []models.Note) []models.Note { return ToggleAction(n, "note-1", "action-1") }
	h := func(n []models.Note) []models.Note {
		return SaveReflection(n, "note-2", models.FiveWhys{Why3: "c"})
	}

	assert.Equal(t, g(f(seedNotes())), f(g(seedNotes())))
	assert.Equal(t, h(f(seedNotes())), f(h(seedNotes())))
}

// ============================================================================
// Session Tests
// ============================================================================

func TestSession_NoActiveBoardIsNoop(t *testing.T) {
	t.Parallel()

	s := New()
	changed := s.Apply(func(n []models.Note) []models.Note { return AddNote(n, "x") })
	assert.False(t, changed)
	assert.Empty(t, s.Notes())
}

func TestSession_Apply(t *testing.T) {
	t.Parallel()

	s := New()
	s.Activate("Brian_Aoife_1234", "Brian_Aoife_1234", seedNotes())

	assert.True(t, s.Apply(func(n []models.Note) []models.Note { return AddNote(n, "x") }))
	assert.Len(t, s.Notes(), 3)

	assert.False(t, s.Apply(func(n []models.Note) []models.Note { return AddNote(n, "") }))
	assert.False(t, s.Apply(func(n []models.Note) []models.Note {
		return MoveNote(n, "note-2", models.ZonePartial)
	}))

	s.Deactivate()
	assert.Equal(t, "", s.ActiveID())
	assert.NotNil(t, s.Notes())
}

func TestZoneSummary(t *testing.T) {
	t.Parallel()

	notes := seedNotes()
	notes = ToggleAction(notes, "note-1", "action-1")
	notes = AddAction(notes, "note-1", "second")

	groups := ZoneSummary(notes)
	require.Len(t, groups, 3)
	assert.Equal(t, models.ZoneConfused, groups[0].Zone)
	assert.Len(t, groups[0].Notes, 1)
	assert.Equal(t, 1, groups[0].OpenActions)
	assert.Equal(t, 1, groups[0].DoneActions)
	assert.Len(t, groups[1].Notes, 1)
	assert.Empty(t, groups[2].Notes)
}
