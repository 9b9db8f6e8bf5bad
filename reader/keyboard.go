package reader

import (
	"context"
	"fmt"
	"log"

	"github.com/kenshaw/evdev"
)

// Keyboard implements KeyReader for USB keyboard-wedge scanners.
type Keyboard struct {
	device *evdev.Evdev
	events <-chan *evdev.EventEnvelope
	cancel context.CancelFunc
}

// NewKeyboard opens the input device. With grab set, keystrokes are not
// delivered to anything else on the system.
func NewKeyboard(device string, grab bool) (*Keyboard, error) {
	dev, err := evdev.OpenFile(device)
	if err != nil {
		return nil, fmt.Errorf("open evdev %s: %w", device, err)
	}

	log.Printf("Opened keyboard device: %s", dev.Name())
	log.Printf("Vendor: 0x%04x, Product: 0x%04x", dev.ID().Vendor, dev.ID().Product)

	if grab {
		if err := dev.Lock(); err != nil {
			dev.Close()
			return nil, fmt.Errorf("grab evdev %s: %w", device, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Keyboard{
		device: dev,
		events: dev.Poll(ctx),
		cancel: cancel,
	}, nil
}

// Read implements KeyReader.Read for keyboard devices.
// Auto-repeat and keys without a browser key code are skipped.
func (k *Keyboard) Read(ctx context.Context) (KeyEvent, error) {
	for {
		select {
		case <-ctx.Done():
			return KeyEvent{}, ctx.Err()
		case event := <-k.events:
			if event == nil {
				return KeyEvent{}, fmt.Errorf("keyboard device closed")
			}

			switch event.Type.(type) {
			case evdev.KeyType:
				if event.Value != 0 && event.Value != 1 {
					continue
				}
				code, ok := BrowserCode(event.Code)
				if !ok {
					continue
				}
				return KeyEvent{Code: code, Down: event.Value == 1}, nil
			}
		}
	}
}

// Close implements KeyReader.Close.
func (k *Keyboard) Close() error {
	if k.device == nil {
		return nil
	}
	k.cancel()
	return k.device.Close()
}
