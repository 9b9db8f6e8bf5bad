package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Serial implements KeyReader for serial barcode scanners. Every byte
// received is reported as a key-up.
type Serial struct {
	port    *serial.Port
	device  string
	pending []byte
}

// NewSerial opens a serial scanner. A zero baud defaults to 9600.
func NewSerial(device string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = 9600
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}

	return &Serial{port: port, device: device}, nil
}

// Read implements KeyReader.Read for serial scanners.
func (s *Serial) Read(ctx context.Context) (KeyEvent, error) {
	buff := make([]byte, 64)
	for len(s.pending) == 0 {
		select {
		case <-ctx.Done():
			return KeyEvent{}, ctx.Err()
		default:
		}

		n, err := s.port.Read(buff)
		if n == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return KeyEvent{}, fmt.Errorf("read serial %s: %w", s.device, err)
			}
			continue // Timeout, try again
		}
		s.pending = append(s.pending, buff[:n]...)
	}

	b := s.pending[0]
	s.pending = s.pending[1:]
	return KeyEvent{Code: ByteCode(b)}, nil
}

// ByteCode converts a byte sent by a serial scanner into the key code a
// keyboard wedge would have produced for it. Lowercase letters fold to
// their key, and backquote gets its own code, so none of them can be
// mistaken for numeric keypad codes.
func ByteCode(b byte) int {
	switch {
	case b >= 'a' && b <= 'z':
		return int(b - 'a' + 'A')
	case b == '`':
		return 192
	default:
		return int(b)
	}
}

// Close implements KeyReader.Close.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
