package tui

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToastController_Error(t *testing.T) {
	c := NewToastController()

	c.Error("backend unreachable")

	assert.True(t, c.HasToasts())
	assert.Len(t, c.Toasts(), 1)
	assert.Equal(t, "backend unreachable", c.Toasts()[0].message)
	assert.Equal(t, toastError, c.Toasts()[0].level)
	assert.Equal(t, defaultToastTTL, c.Toasts()[0].remaining)
}

func TestToastController_push_evicts_oldest_at_max(t *testing.T) {
	c := NewToastController()

	for i := range defaultMaxToasts + 2 {
		c.Info(strconv.Itoa(i))
	}

	assert.Len(t, c.Toasts(), defaultMaxToasts)
	// Oldest two should have been evicted; first remaining is "2".
	assert.Equal(t, "2", c.Toasts()[0].message)
}

func TestToastController_Tick_decrements_TTL(t *testing.T) {
	c := NewToastController()
	c.Info("tick")

	c.Tick(1 * time.Second)

	assert.Equal(t, defaultToastTTL-1*time.Second, c.Toasts()[0].remaining)
}

func TestToastController_Tick_removes_expired(t *testing.T) {
	c := NewToastController()
	c.Info("expires")
	c.Info("survives")

	c.toasts[0].remaining = 50 * time.Millisecond
	c.Tick(100 * time.Millisecond)

	assert.Len(t, c.Toasts(), 1)
	assert.Equal(t, "survives", c.Toasts()[0].message)
}

func TestToastController_Dismiss(t *testing.T) {
	c := NewToastController()
	c.Info("first")
	c.Info("second")

	c.Dismiss()

	assert.Len(t, c.Toasts(), 1)
	assert.Equal(t, "first", c.Toasts()[0].message)
}

func TestToastController_Dismiss_empty(t *testing.T) {
	c := NewToastController()
	c.Dismiss() // should not panic
	assert.False(t, c.HasToasts())
}
