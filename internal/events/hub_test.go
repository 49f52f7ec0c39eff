package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thenoetrevino/circles/internal/models"
)

func TestHub_FiltersByBoard(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	var mu sync.Mutex
	got := map[string][]string{}
	record := func(name string) func(Event) {
		return func(ev Event) {
			mu.Lock()
			defer mu.Unlock()
			got[name] = append(got[name], ev.BoardID)
		}
	}

	hub.Subscribe("a", record("a"))
	hub.Subscribe("b", record("b"))
	hub.Subscribe("", record("all"))

	_ = hub.Publish(Event{Type: EventBoardUpdated, BoardID: "a"})
	_ = hub.Publish(Event{Type: EventBoardUpdated, BoardID: "b"})

	assert.Equal(t, []string{"a"}, got["a"])
	assert.Equal(t, []string{"b"}, got["b"])
	assert.Equal(t, []string{"a", "b"}, got["all"])
}

func TestHub_Unsubscribe(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	calls := 0
	unsub := hub.Subscribe("a", func(Event) { calls++ })
	_ = hub.Publish(Event{BoardID: "a", Content: []models.Note{}})

	unsub()
	unsub()
	_ = hub.Publish(Event{BoardID: "a"})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, hub.Len())
}

func TestHub_UnsubscribeFromHandler(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	var unsub func()
	calls := 0
	unsub = hub.Subscribe("a", func(Event) {
		calls++
		unsub()
	})

	_ = hub.Publish(Event{BoardID: "a"})
	_ = hub.Publish(Event{BoardID: "a"})
	assert.Equal(t, 1, calls)
}

func TestEvent_Matches(t *testing.T) {
	t.Parallel()

	ev := Event{BoardID: "x"}
	assert.True(t, ev.Matches(""))
	assert.True(t, ev.Matches("x"))
	assert.False(t, ev.Matches("y"))
	assert.True(t, Event{}.Matches("y"), "events without a board reach everyone")
}
