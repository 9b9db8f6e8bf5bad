//go:build linux

package trigger

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Button is a push button on a GPIO line that forces a pending scan to be
// processed without waiting for the idle timeout.
type Button struct {
	line    *gpiocdev.Line
	onPress func()
}

// Config holds configuration for a flush button.
type Config struct {
	Chip   string `yaml:"chip"`
	Pin    int    `yaml:"pin"`
	Target string `yaml:"target"` // source whose buffer is flushed
}

// New requests the button line. Returns nil if no pin is configured.
func New(cfg Config, onPress func()) (*Button, error) {
	if cfg.Pin == 0 {
		return nil, nil
	}
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}

	b := &Button{onPress: onPress}
	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.Pin,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(2*time.Millisecond),
		gpiocdev.WithEventHandler(b.handleEvent))
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", cfg.Chip, cfg.Pin, err)
	}
	b.line = line
	return b, nil
}

func (b *Button) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	if b.onPress != nil {
		b.onPress()
	}
}

// Release frees the GPIO line.
func (b *Button) Release() error {
	if b == nil || b.line == nil {
		return nil
	}
	return b.line.Close()
}
