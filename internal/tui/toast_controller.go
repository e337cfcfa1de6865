package tui

import "time"

const (
	defaultToastTTL   = 5 * time.Second
	defaultMaxToasts  = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 46
)

// toastLevel classifies a toast for styling.
type toastLevel int

const (
	toastInfo toastLevel = iota
	toastError
)

type toast struct {
	level     toastLevel
	message   string
	remaining time.Duration
}

// ToastController manages the lifecycle of dismissible toast messages: the
// user-visible surface for backend and network failures. It handles push,
// eviction, TTL countdown, and dismissal.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Error pushes an error-level toast.
func (c *ToastController) Error(message string) {
	c.push(toast{level: toastError, message: message, remaining: defaultToastTTL})
}

// Info pushes an info-level toast.
func (c *ToastController) Info(message string) {
	c.push(toast{level: toastInfo, message: message, remaining: defaultToastTTL})
}

func (c *ToastController) push(t toast) {
	c.toasts = append(c.toasts, t)
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes any that
// have expired.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

// HasToasts returns true if there are any active toasts.
func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Toasts returns the current active toast slice.
func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking returns whether the tick timer is currently running.
func (c *ToastController) Ticking() bool {
	return c.ticking
}

// SetTicking sets the tick timer state.
func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
