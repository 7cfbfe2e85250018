package client

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertBusOrderAndLength(t *testing.T) {
	bus := NewAlertBus()

	var added []Alert
	for i := 0; i < 5; i++ {
		added = append(added, bus.Add(Alert{
			Level: LevelInfo,
			Title: fmt.Sprintf("alert %d", i),
		}))
	}
	assert.Equal(t, 5, bus.Len())

	list := bus.List()
	for i, alert := range list {
		assert.Equal(t, fmt.Sprintf("alert %d", i), alert.Title, "FIFO display order")
	}

	bus.Remove(added[2])
	assert.Equal(t, 4, bus.Len())
	for _, alert := range bus.List() {
		assert.NotEqual(t, added[2], alert)
	}
}

func TestAlertBusRemoveAbsentIsNoop(t *testing.T) {
	bus := NewAlertBus()
	kept := bus.Add(Alert{Level: LevelWarning, Title: "kept"})

	bus.Remove(Alert{ID: "never-added", Level: LevelDanger})
	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, []Alert{kept}, bus.List())
}

func TestAlertBusAllowsDuplicates(t *testing.T) {
	bus := NewAlertBus()
	alert := Alert{ID: "dup", Level: LevelInfo, Title: "same"}

	bus.Add(alert)
	bus.Add(alert)
	assert.Equal(t, 2, bus.Len())

	// Remove drops only the first equal element.
	bus.Remove(alert)
	assert.Equal(t, 1, bus.Len())
}

func TestAlertBusClear(t *testing.T) {
	bus := NewAlertBus()
	bus.Add(Alert{Title: "a"})
	bus.Add(Alert{Title: "b"})

	bus.Clear()
	assert.Zero(t, bus.Len())
	assert.Empty(t, bus.List())
}

func TestAlertBusAssignsIDs(t *testing.T) {
	bus := NewAlertBus()
	alert := bus.Add(Alert{Title: "no id"})
	assert.NotEmpty(t, alert.ID)

	withID := bus.Add(Alert{ID: "fixed", Title: "has id"})
	assert.Equal(t, "fixed", withID.ID)
}
