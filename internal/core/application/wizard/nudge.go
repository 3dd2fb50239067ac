package wizard

import (
	"sync"
	"time"
)

// Nudge fires a callback once after a delay unless cancelled first. The host arms it
// when a shipment is confirmed (to suggest creating an account) and cancels it on the
// next interaction. A nil *Nudge does nothing.
type Nudge struct {
	after time.Duration
	fire  func()

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
}

// NewNudge creates a disarmed Nudge.
func NewNudge(after time.Duration, fire func()) *Nudge {
	return &Nudge{after: after, fire: fire}
}

// Arm (re)starts the delay.
func (n *Nudge) Arm() {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.generation++
	generation := n.generation
	n.timer = time.AfterFunc(n.after, func() {
		n.mu.Lock()
		if n.generation != generation {
			n.mu.Unlock()
			return
		}
		n.timer = nil
		n.mu.Unlock()
		n.fire()
	})
}

// Cancel disarms the nudge and reports whether it was armed.
func (n *Nudge) Cancel() bool {
	if n == nil {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer == nil {
		return false
	}
	n.timer.Stop()
	n.timer = nil
	n.generation++
	return true
}

// Armed reports whether the nudge is waiting to fire.
func (n *Nudge) Armed() bool {
	if n == nil {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.timer != nil
}
