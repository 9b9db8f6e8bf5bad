package indicator

import "errors"

// Multi fans every call out to several indicators.
type Multi struct {
	indicators []Indicator
}

// Idle implements Indicator.Idle.
func (m *Multi) Idle() {
	for _, ind := range m.indicators {
		ind.Idle()
	}
}

// Scanned implements Indicator.Scanned.
func (m *Multi) Scanned() {
	for _, ind := range m.indicators {
		ind.Scanned()
	}
}

// ConnectionLost implements Indicator.ConnectionLost.
func (m *Multi) ConnectionLost() {
	for _, ind := range m.indicators {
		ind.ConnectionLost()
	}
}

// Shutdown implements Indicator.Shutdown.
func (m *Multi) Shutdown() {
	for _, ind := range m.indicators {
		ind.Shutdown()
	}
}

// Release implements Indicator.Release. Every indicator is released even
// if an earlier one fails.
func (m *Multi) Release() error {
	var errs []error
	for _, ind := range m.indicators {
		if err := ind.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetConnected implements Connector for the wrapped indicators.
func (m *Multi) SetConnected() {
	for _, ind := range m.indicators {
		MarkConnected(ind)
	}
}
