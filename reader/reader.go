package reader

import (
	"context"
	"fmt"
)

// KeyEvent is one key transition in browser key-code terms.
type KeyEvent struct {
	Code int
	Down bool // key-down; false means key-up
}

// KeyReader is the interface for all key sources.
type KeyReader interface {
	// Read blocks until a key event arrives or ctx is cancelled.
	Read(ctx context.Context) (KeyEvent, error)

	// Close releases any resources held by the reader.
	Close() error
}

// Config holds configuration for one key source.
type Config struct {
	Name   string `yaml:"name"`   // target name barcodes are reported under
	Type   string `yaml:"type"`   // "keyboard", "serial"
	Device string `yaml:"device"` // e.g., "/dev/input/event0", "/dev/ttyUSB0"
	Baud   int    `yaml:"baud"`   // baud rate for serial devices
	Grab   bool   `yaml:"grab"`   // take the input device exclusively
}

// New creates a KeyReader based on the provided configuration.
func New(cfg Config) (KeyReader, error) {
	switch cfg.Type {
	case "keyboard", "evdev":
		return NewKeyboard(cfg.Device, cfg.Grab)
	case "serial":
		return NewSerial(cfg.Device, cfg.Baud)
	default:
		return nil, fmt.Errorf("unknown reader type %q", cfg.Type)
	}
}
