// Package scanbuf tells barcode scanner bursts apart from human typing.
//
// Key codes are accumulated per target as tokens. When a target has been
// quiet for the configured timeout its buffer is rewritten by an ordered
// rule list, and anything longer than one character is reported as a
// barcode together with its whitespace separated segments.
package scanbuf

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultTimeout is the idle time after which a buffer counts as a scan.
const DefaultTimeout = 1000 * time.Millisecond

// KeyEnter must not trigger the default action on key-down.
const KeyEnter = 13

var lineBreakRe = regexp.MustCompile(`\r\n|\n|\r`)

// Config configures a Scanner. Every field is optional.
type Config struct {
	Timeout   time.Duration
	Rules     *Rules
	Debug     bool
	Data      string // comma separated codes replayed by Attach
	OnBarcode func(t Target, barcode string, segments []string)
	OnData    func(code int, char string)
	Clock     Clock
}

// Barcode is an accepted scan.
type Barcode struct {
	Text     string
	Segments []string
}

// Scanner accumulates key codes per target and reports barcodes.
type Scanner struct {
	timeout   time.Duration
	rules     Rules
	debug     bool
	data      string
	onBarcode func(Target, string, []string)
	onData    func(int, string)
	debounce  *Debouncer

	mu      sync.Mutex
	seq     uint64
	targets map[string]*targetState
}

type targetState struct {
	buf strings.Builder
	seq uint64
}

// New creates a Scanner.
func New(cfg Config) *Scanner {
	s := &Scanner{
		timeout:   cfg.Timeout,
		rules:     DefaultRules(),
		debug:     cfg.Debug,
		data:      cfg.Data,
		onBarcode: cfg.OnBarcode,
		onData:    cfg.OnData,
		debounce:  NewDebouncer(cfg.Clock),
		targets:   make(map[string]*targetState),
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if cfg.Rules != nil {
		s.rules = *cfg.Rules
	}
	s.logf("EVENT", "Initialize")
	return s
}

// NormalizeKeypad maps numeric keypad codes 96-105 onto the digit codes
// 48-57. Metrologic scanners report digits from the keypad block.
func NormalizeKeypad(code int) int {
	if code >= 96 && code <= 105 {
		return code - 48
	}
	return code
}

// Decode returns the character a key code stands for. Codes are read as
// Unicode code points rather than truncated to 16 bits; real key codes stay
// far below 0xD800.
func Decode(code int) string {
	if code < 0 || code > utf8.MaxRune {
		return string(utf8.RuneError)
	}
	return string(rune(code))
}

// Attach replays the configured data stream into t.
func (s *Scanner) Attach(t Target) {
	if s.data == "" {
		return
	}
	s.Replay(t, s.data)
}

// Replay feeds a comma separated code stream into t as if typed.
// Entries that are not integers are skipped.
func (s *Scanner) Replay(t Target, stream string) int {
	n := 0
	for _, part := range strings.Split(stream, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			s.logf("INFO", "Skip data entry "+strconv.Quote(part))
			continue
		}
		s.Receive(t, code)
		n++
	}
	return n
}

// KeyDown reports whether a key-down should keep its default action.
// Enter is suppressed so it never submits anything.
func (s *Scanner) KeyDown(code int) bool {
	return code != KeyEnter
}

// Receive records a key-up for t and restarts t's idle timer. It always
// lets the key propagate.
func (s *Scanner) Receive(t Target, code int) bool {
	code = NormalizeKeypad(code)
	ch := Decode(code)
	if s.onData != nil {
		s.onData(code, ch)
	}
	s.logf("EVENT", "KeyUp")
	s.logf("INFO", "CharCode="+strconv.Itoa(code))

	id := t.ID()

	s.mu.Lock()
	st, ok := s.targets[id]
	if !ok {
		st = &targetState{}
		s.targets[id] = st
	}
	st.buf.WriteString(Token(code))
	s.seq++
	st.seq = s.seq
	seq := s.seq
	s.debounce.Schedule(id, s.timeout, func() {
		s.flush(t, seq)
	})
	s.mu.Unlock()
	return true
}

// FlushNow processes t's buffer immediately instead of waiting for the
// idle timer. It is a no-op when t has nothing buffered.
func (s *Scanner) FlushNow(t Target) {
	s.debounce.Cancel(t.ID())
	s.flush(t, 0)
}

// Pending reports whether t is accumulating.
func (s *Scanner) Pending(t Target) bool {
	return s.debounce.Pending(t.ID())
}

// Close cancels all pending timers. Buffers are dropped unflushed.
func (s *Scanner) Close() {
	s.debounce.Stop()
	s.mu.Lock()
	s.targets = make(map[string]*targetState)
	s.mu.Unlock()
}

// flush takes t's buffer if seq is still its latest keystroke, or
// unconditionally when seq is 0.
func (s *Scanner) flush(t Target, seq uint64) {
	id := t.ID()

	s.mu.Lock()
	st, ok := s.targets[id]
	if !ok || (seq != 0 && st.seq != seq) {
		s.mu.Unlock()
		return
	}
	raw := st.buf.String()
	delete(s.targets, id)
	s.mu.Unlock()

	if bc, ok := s.Process(raw, t.Value); ok {
		if s.onBarcode != nil {
			s.logf("INFO", "Callback onBarcode()")
			s.logf("INFO", "Read barcode "+strings.Join(bc.Segments, ","))
			s.onBarcode(t, bc.Text, bc.Segments)
		}
	}
	t.Clear()
}

// Process turns a raw token buffer into a barcode. value supplies the field
// content when the buffer is nothing but a paste. ok is false when the
// result is too short to be a scan.
func (s *Scanner) Process(raw string, value func() string) (Barcode, bool) {
	text := s.rules.Apply(raw)
	if text == PasteMarker && value != nil {
		text = lineBreakRe.ReplaceAllString(value(), " ")
	}
	text = strings.ReplaceAll(text, PasteMarker, "")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) <= 1 {
		return Barcode{}, false
	}
	return Barcode{Text: text, Segments: strings.Fields(text)}, true
}

func (s *Scanner) logf(typ, msg string) {
	if s.debug {
		log.Printf("[%s] %s", typ, msg)
	}
}
