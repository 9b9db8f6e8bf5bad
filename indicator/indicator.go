package indicator

// Indicator is the interface for status indicator implementations (LEDs, neopixels, etc).
type Indicator interface {
	// Idle sets the indicator to the ready state.
	Idle()

	// Scanned signals an accepted barcode.
	Scanned()

	// ConnectionLost signals that scans cannot be published.
	ConnectionLost()

	// Shutdown sets the indicator to shutdown state.
	Shutdown()

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for indicator implementations.
type Config struct {
	// GPIO LED pins (nil = not configured)
	GreenPin *uint8 `yaml:"green_pin"`
	RedPin   *uint8 `yaml:"red_pin"`

	// Neopixel pipe path (empty = not configured)
	NeopixelPipe string `yaml:"neopixel_pipe"`

	// How long Scanned stays lit before returning to idle
	FlashMillis int `yaml:"flash_ms"`
}

// New creates an Indicator based on the provided configuration.
// Returns a Multi indicator if both GPIO and Neopixel are configured.
func New(cfg Config) (Indicator, error) {
	var indicators []Indicator

	if cfg.GreenPin != nil || cfg.RedPin != nil {
		gpio, err := NewGPIO(cfg.GreenPin, cfg.RedPin)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, gpio)
	}

	if cfg.NeopixelPipe != "" {
		neo, err := NewNeopixel(cfg.NeopixelPipe)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, neo)
	}

	return Combine(indicators...), nil
}

// Combine merges indicators into one: Noop for none, the indicator itself
// for one, Multi otherwise.
func Combine(indicators ...Indicator) Indicator {
	switch len(indicators) {
	case 0:
		return &Noop{}
	case 1:
		return indicators[0]
	default:
		return &Multi{indicators: indicators}
	}
}

// Connector is implemented by indicators whose idle state shows whether
// the broker is reachable.
type Connector interface {
	SetConnected()
}

// MarkConnected tells ind the broker is reachable, if it cares.
func MarkConnected(ind Indicator) {
	if c, ok := ind.(Connector); ok {
		c.SetConnected()
	}
}
