package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowedge/eventpipe"
	"gowedge/mqtt"
	"gowedge/reader"
)

func newTestApp(t *testing.T, cfg *Config) (*App, chan mqtt.BarcodeMessage) {
	t.Helper()
	if cfg.ClientID == "" {
		cfg.ClientID = "lane1"
	}
	if cfg.Scanner.TimeoutMillis == 0 {
		cfg.Scanner.TimeoutMillis = 20
	}
	app, err := NewApp(cfg)
	require.NoError(t, err)

	published := make(chan mqtt.BarcodeMessage, 8)
	app.publish = func(msg mqtt.BarcodeMessage) error {
		published <- msg
		return nil
	}
	t.Cleanup(app.Close)
	return app, published
}

func waitBarcode(t *testing.T, ch chan mqtt.BarcodeMessage) mqtt.BarcodeMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no barcode published")
		return mqtt.BarcodeMessage{}
	}
}

func TestApp_KeyEvents(t *testing.T) {
	app, published := newTestApp(t, &Config{})
	target := app.target("kbd")

	for _, code := range []int{65, 49, 32, 66, 50} {
		app.handleKey(target, reader.KeyEvent{Code: code, Down: true})
		app.handleKey(target, reader.KeyEvent{Code: code})
	}
	app.handleKey(target, reader.KeyEvent{Code: 13, Down: true})
	app.handleKey(target, reader.KeyEvent{Code: 13})

	msg := waitBarcode(t, published)
	assert.Equal(t, "lane1", msg.Node)
	assert.Equal(t, "kbd", msg.Target)
	assert.Equal(t, "A1 B2", msg.Barcode)
	assert.Equal(t, []string{"A1", "B2"}, msg.Segments)
	assert.NotEmpty(t, msg.ID)
}

func TestApp_StartupData(t *testing.T) {
	app, published := newTestApp(t, &Config{
		Scanner: ScannerConfig{Data: "56,56,55,48,48,49,55,49,55,53,13"},
	})
	require.NoError(t, app.Start())

	msg := waitBarcode(t, published)
	assert.Equal(t, syntheticTarget, msg.Target)
	assert.Equal(t, "8870017175", msg.Barcode)
}

func TestApp_StartupDataReplayedOnce(t *testing.T) {
	app, published := newTestApp(t, &Config{
		Scanner: ScannerConfig{Data: "56,56,13"},
		Sources: []reader.Config{
			{Name: "kbd", Type: "keyboard"},
			{Name: "counter", Type: "serial"},
		},
	})
	app.replayStartupData()

	msg := waitBarcode(t, published)
	assert.Equal(t, syntheticTarget, msg.Target)
	assert.Equal(t, "88", msg.Barcode)

	select {
	case extra := <-published:
		t.Fatalf("stream replayed again into %s", extra.Target)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestApp_PipeCommands(t *testing.T) {
	app, published := newTestApp(t, &Config{Scanner: ScannerConfig{TimeoutMillis: 60000}})

	app.onCommand(eventpipe.Command{Op: eventpipe.OpValue, Target: "kbd", Arg: "LOT-7\nQTY-3"})
	app.onCommand(eventpipe.Command{Op: eventpipe.OpCodes, Target: "kbd", Arg: "17,86"})
	app.onCommand(eventpipe.Command{Op: eventpipe.OpFlush, Target: "kbd"})

	msg := waitBarcode(t, published)
	assert.Equal(t, "LOT-7 QTY-3", msg.Barcode)
	assert.Empty(t, app.target("kbd").Value())
}

func TestApp_Inject(t *testing.T) {
	app, published := newTestApp(t, &Config{})

	app.onInject(mqtt.Inject{Target: "counter", Data: "101,102,103"})
	msg := waitBarcode(t, published)
	assert.Equal(t, "counter", msg.Target)
	assert.Equal(t, "567", msg.Barcode)
}

func TestApp_ShortScanNotPublished(t *testing.T) {
	app, published := newTestApp(t, &Config{})

	app.onInject(mqtt.Inject{Target: "kbd", Data: "65", Flush: true})
	select {
	case msg := <-published:
		t.Fatalf("unexpected barcode %q", msg.Barcode)
	case <-time.After(100 * time.Millisecond):
	}
}
