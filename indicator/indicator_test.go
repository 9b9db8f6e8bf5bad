package indicator

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeIndicator struct {
	calls      []string
	connected  bool
	releaseErr error
}

func (f *fakeIndicator) Idle()           { f.calls = append(f.calls, "idle") }
func (f *fakeIndicator) Scanned()        { f.calls = append(f.calls, "scanned") }
func (f *fakeIndicator) ConnectionLost() { f.calls = append(f.calls, "lost") }
func (f *fakeIndicator) Shutdown()       { f.calls = append(f.calls, "shutdown") }
func (f *fakeIndicator) SetConnected()   { f.connected = true }
func (f *fakeIndicator) Release() error {
	f.calls = append(f.calls, "release")
	return f.releaseErr
}

type nopCloser struct{ bytes.Buffer }

func (*nopCloser) Close() error { return nil }

func TestCombine(t *testing.T) {
	assert.IsType(t, &Noop{}, Combine())

	a := &fakeIndicator{}
	assert.Same(t, a, Combine(a))

	b := &fakeIndicator{}
	assert.IsType(t, &Multi{}, Combine(a, b))
}

func TestNew_NothingConfigured(t *testing.T) {
	ind, err := New(Config{})
	assert.NoError(t, err)
	assert.IsType(t, &Noop{}, ind)
}

func TestMulti(t *testing.T) {
	a := &fakeIndicator{}
	b := &fakeIndicator{releaseErr: errors.New("busy")}
	m := Combine(a, b)

	m.Idle()
	m.Scanned()
	m.ConnectionLost()
	m.Shutdown()
	err := m.Release()

	want := []string{"idle", "scanned", "lost", "shutdown", "release"}
	assert.Equal(t, want, a.calls)
	assert.Equal(t, want, b.calls)
	assert.ErrorContains(t, err, "busy")

	MarkConnected(m)
	assert.True(t, a.connected)
	assert.True(t, b.connected)
}

func TestNeopixel(t *testing.T) {
	w := &nopCloser{}
	n := newNeopixel(w)

	n.Idle()
	assert.Equal(t, neoConnectionLost, w.String())

	w.Reset()
	MarkConnected(n)
	n.Idle()
	assert.Equal(t, neoNormalIdle, w.String())

	w.Reset()
	n.Scanned()
	assert.Equal(t, neoScanned, w.String())

	w.Reset()
	n.ConnectionLost()
	n.Idle()
	assert.Equal(t, neoConnectionLost+neoConnectionLost, w.String())

	assert.NoError(t, n.Release())
}

func TestNoop(t *testing.T) {
	var ind Indicator = &Noop{}
	ind.Idle()
	ind.Scanned()
	MarkConnected(ind)
	assert.NoError(t, ind.Release())
}

func TestGPIO_ConnectionStateConcurrent(t *testing.T) {
	// No pins configured, so no hardware is touched.
	g := &GPIO{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); g.ConnectionLost() }()
		go func() { defer wg.Done(); g.SetConnected() }()
		go func() { defer wg.Done(); g.Idle() }()
	}
	wg.Wait()

	g.ConnectionLost()
	assert.True(t, g.Offline())
	MarkConnected(g)
	assert.False(t, g.Offline())
}
