//go:build !linux

package trigger

import "errors"

var ErrNotSupported = errors.New("flush button not supported on this platform")

// Button is a stub for non-linux platforms.
type Button struct{}

// Config holds configuration for a flush button.
type Config struct {
	Chip   string `yaml:"chip"`
	Pin    int    `yaml:"pin"`
	Target string `yaml:"target"`
}

// New returns an error on non-linux platforms.
func New(cfg Config, onPress func()) (*Button, error) {
	if cfg.Pin == 0 {
		return nil, nil
	}
	return nil, ErrNotSupported
}

func (b *Button) Release() error { return nil }
