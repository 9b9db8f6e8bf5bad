package indicator

import (
	"fmt"
	"sync"

	"github.com/hjkoskel/govattu"
)

// GPIO implements Indicator using discrete LED pins: green lights on a
// scan, red while the broker is unreachable.
type GPIO struct {
	hw       govattu.Vattu
	greenPin *uint8
	redPin   *uint8

	mu      sync.Mutex
	offline bool
}

// NewGPIO creates a new GPIO-based indicator.
func NewGPIO(greenPin, redPin *uint8) (*GPIO, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	g := &GPIO{
		hw:       hw,
		greenPin: greenPin,
		redPin:   redPin,
	}
	for _, pin := range []*uint8{greenPin, redPin} {
		if pin != nil {
			hw.PinMode(*pin, govattu.ALToutput)
			hw.PinClear(*pin)
		}
	}
	return g, nil
}

// Idle implements Indicator.Idle.
func (g *GPIO) Idle() {
	g.mu.Lock()
	offline := g.offline
	g.mu.Unlock()

	g.set(g.greenPin, false)
	g.set(g.redPin, offline)
}

// Scanned implements Indicator.Scanned.
func (g *GPIO) Scanned() {
	g.set(g.greenPin, true)
}

// ConnectionLost implements Indicator.ConnectionLost.
func (g *GPIO) ConnectionLost() {
	g.mu.Lock()
	g.offline = true
	g.mu.Unlock()
	g.set(g.redPin, true)
}

// SetConnected clears the offline state shown by Idle.
func (g *GPIO) SetConnected() {
	g.mu.Lock()
	g.offline = false
	g.mu.Unlock()
}

// Offline reports whether the broker was last seen unreachable.
func (g *GPIO) Offline() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.offline
}

// Shutdown implements Indicator.Shutdown.
func (g *GPIO) Shutdown() {
	g.set(g.greenPin, false)
	g.set(g.redPin, false)
}

// Release implements Indicator.Release.
func (g *GPIO) Release() error {
	g.Shutdown()
	return g.hw.Close()
}

func (g *GPIO) set(pin *uint8, on bool) {
	if pin == nil {
		return
	}
	if on {
		g.hw.PinSet(*pin)
	} else {
		g.hw.PinClear(*pin)
	}
}
