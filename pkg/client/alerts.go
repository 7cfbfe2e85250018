package client

import (
	"sync"

	"github.com/google/uuid"
)

// Level is the severity of an alert.
type Level string

const (
	LevelDanger  Level = "danger"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

// Alert is one dismissable notification.
type Alert struct {
	ID          string
	Level       Level
	Title       string
	Text        string
	Dismissable bool
	Link        string
}

// AlertBus is an ordered list of alerts in FIFO display order. Any
// component may mutate it. There is no deduplication and no persistence;
// the list lives and dies with the process.
type AlertBus struct {
	mu     sync.Mutex
	alerts []Alert
}

// NewAlertBus creates an empty alert bus.
func NewAlertBus() *AlertBus {
	return &AlertBus{}
}

// Add appends an alert to the end of the list and returns it. An alert
// without an id gets one assigned.
func (b *AlertBus) Add(alert Alert) Alert {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = append(b.alerts, alert)
	return alert
}

// Remove deletes the first alert equal to the given one by value. Removing
// an alert that is not present is a no-op.
func (b *AlertBus) Remove(alert Alert) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.alerts {
		if existing == alert {
			b.alerts = append(b.alerts[:i], b.alerts[i+1:]...)
			return
		}
	}
}

// Clear empties the list.
func (b *AlertBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = nil
}

// List returns a copy of the alerts in display order.
func (b *AlertBus) List() []Alert {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Alert, len(b.alerts))
	copy(out, b.alerts)
	return out
}

// Len reports the number of alerts held.
func (b *AlertBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.alerts)
}
