package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gowedge/eventpipe"
	"gowedge/indicator"
	"gowedge/mqtt"
	"gowedge/reader"
	"gowedge/scanbuf"
	"gowedge/trigger"
)

var myBuild string

const (
	defaultFlash    = 300 * time.Millisecond
	syntheticTarget = "synthetic"
	flashKey        = "indicator"
)

// App holds the application state and dependencies.
type App struct {
	cfg       *Config
	scanner   *scanbuf.Scanner
	mqtt      *mqtt.Client
	indicator indicator.Indicator
	pipe      *eventpipe.EventPipe
	button    *trigger.Button
	flash     *scanbuf.Debouncer
	readers   map[string]reader.KeyReader
	publish   func(mqtt.BarcodeMessage) error
	ctx       context.Context
	cancel    context.CancelFunc

	mu      sync.Mutex
	targets map[string]*scanbuf.Field
}

func main() {
	fmt.Printf("gowedge build %s\n", myBuild)

	cfgfile := flag.String("cfg", "gowedge.cfg", "Config file")
	data := flag.String("data", "", "Key code stream to replay at startup, e.g. 56,56,13")
	debug := flag.Bool("debug", false, "Log every key event")
	flag.Parse()

	cfg, err := LoadConfig(*cfgfile)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if *data != "" {
		cfg.Scanner.Data = *data
	}
	if *debug {
		cfg.Scanner.Debug = true
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Init: %v", err)
	}
	if err := app.Start(); err != nil {
		log.Fatalf("Start: %v", err)
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	app.Close()
	fmt.Println("Shutdown complete")
}

// NewApp builds the scanner, indicator and MQTT client. Hardware key
// sources are opened by Start.
func NewApp(cfg *Config) (*App, error) {
	rules, err := scanbuf.CompileRules(cfg.Scanner.Rules)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		cfg:     cfg,
		flash:   scanbuf.NewDebouncer(nil),
		readers: make(map[string]reader.KeyReader),
		targets: make(map[string]*scanbuf.Field),
		ctx:     ctx,
		cancel:  cancel,
	}

	app.indicator, err = indicator.New(cfg.Indicator)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("init indicator: %w", err)
	}
	app.indicator.ConnectionLost() // Start with connection lost state

	app.mqtt, err = mqtt.New(cfg.MQTT, cfg.ClientID, mqtt.Handlers{
		OnConnect:    app.onMQTTConnect,
		OnDisconnect: app.onMQTTDisconnect,
		OnInject:     app.onInject,
	})
	if err != nil {
		cancel()
		app.indicator.Release()
		return nil, fmt.Errorf("init MQTT: %w", err)
	}
	app.publish = app.mqtt.PublishBarcode

	app.scanner = scanbuf.New(scanbuf.Config{
		Timeout:   cfg.Scanner.Timeout(),
		Rules:     &rules,
		Debug:     cfg.Scanner.Debug,
		Data:      cfg.Scanner.Data,
		OnBarcode: app.onBarcode,
		OnData:    app.onData,
	})
	return app, nil
}

// Start opens the key sources, replays the configured data stream and
// starts the background goroutines.
func (app *App) Start() error {
	for _, src := range app.cfg.Sources {
		r, err := reader.New(src)
		if err != nil {
			return fmt.Errorf("init reader %s: %w", src.Name, err)
		}
		app.readers[src.Name] = r
		log.Printf("Reader %s (%s) on %s", src.Name, src.Type, src.Device)
	}

	var err error
	app.pipe, err = eventpipe.New(app.cfg.EventPipe, app.onCommand)
	if err != nil {
		return fmt.Errorf("init event pipe: %w", err)
	}

	if app.cfg.Trigger.Pin != 0 {
		target := app.target(app.cfg.Trigger.Target)
		app.button, err = trigger.New(app.cfg.Trigger, func() {
			app.scanner.FlushNow(target)
		})
		if err != nil {
			return fmt.Errorf("init trigger: %w", err)
		}
	}

	app.replayStartupData()

	go func() {
		if err := app.mqtt.Connect(); err != nil {
			log.Printf("MQTT connect: %v", err)
		}
	}()
	for name, r := range app.readers {
		go app.keyListener(app.target(name), r)
	}
	if app.pipe != nil {
		go app.pipe.Start()
	}
	go app.pingSender()
	return nil
}

// Close stops every goroutine and releases hardware. Pending buffers are
// dropped.
func (app *App) Close() {
	app.cancel()

	for name, r := range app.readers {
		if err := r.Close(); err != nil {
			log.Printf("Close reader %s: %v", name, err)
		}
	}
	if app.pipe != nil {
		app.pipe.Close()
	}
	app.button.Release()
	app.scanner.Close()
	app.flash.Stop()
	app.mqtt.Disconnect()
	app.indicator.Shutdown()
	app.indicator.Release()
}

// replayStartupData feeds the configured stream once, into the synthetic
// target, so it yields one barcode however many sources are configured.
func (app *App) replayStartupData() {
	if app.cfg.Scanner.Data == "" {
		return
	}
	app.scanner.Attach(app.target(syntheticTarget))
}

// target returns the field for name, creating it on first use.
func (app *App) target(name string) *scanbuf.Field {
	app.mu.Lock()
	defer app.mu.Unlock()

	f, ok := app.targets[name]
	if !ok {
		f = scanbuf.NewField(name)
		app.targets[name] = f
	}
	return f
}

func (app *App) keyListener(target *scanbuf.Field, r reader.KeyReader) {
	for {
		ev, err := r.Read(app.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("Read %s: %v", target.ID(), err)
			select {
			case <-app.ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		app.handleKey(target, ev)
	}
}

func (app *App) handleKey(target *scanbuf.Field, ev reader.KeyEvent) {
	if ev.Down {
		if !app.scanner.KeyDown(ev.Code) && app.cfg.Scanner.Debug {
			log.Printf("[EVENT] KeyDown %d suppressed on %s", ev.Code, target.ID())
		}
		return
	}
	app.scanner.Receive(target, ev.Code)
}

func (app *App) onBarcode(t scanbuf.Target, barcode string, segments []string) {
	fmt.Printf("Barcode on %s: %s\n", t.ID(), barcode)

	msg := mqtt.NewBarcodeMessage(app.cfg.ClientID, t.ID(), barcode, segments, time.Now())
	if err := app.publish(msg); err != nil {
		log.Printf("Publish barcode: %v", err)
	}

	app.indicator.Scanned()
	flash := defaultFlash
	if app.cfg.Indicator.FlashMillis > 0 {
		flash = time.Duration(app.cfg.Indicator.FlashMillis) * time.Millisecond
	}
	app.flash.Schedule(flashKey, flash, app.indicator.Idle)
}

func (app *App) onData(code int, char string) {
	if !app.cfg.PublishData {
		return
	}
	if err := app.mqtt.PublishData(mqtt.DataMessage{Code: code, Char: char}); err != nil {
		log.Printf("Publish data: %v", err)
	}
}

func (app *App) onCommand(cmd eventpipe.Command) {
	target := app.target(cmd.Target)
	switch cmd.Op {
	case eventpipe.OpCodes:
		app.scanner.Replay(target, cmd.Arg)
	case eventpipe.OpValue:
		target.Set(cmd.Arg)
	case eventpipe.OpFlush:
		app.scanner.FlushNow(target)
	}
}

func (app *App) onInject(inj mqtt.Inject) {
	target := app.target(inj.Target)
	if inj.Value != "" {
		target.Set(inj.Value)
	}
	n := app.scanner.Replay(target, inj.Data)
	log.Printf("Injected %d codes into %s", n, inj.Target)
	if inj.Flush {
		app.scanner.FlushNow(target)
	}
}

func (app *App) onMQTTConnect() {
	indicator.MarkConnected(app.indicator)
	app.indicator.Idle()
}

func (app *App) onMQTTDisconnect() {
	app.indicator.ConnectionLost()
}

func (app *App) pingSender() {
	ticker := time.NewTicker(120 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			app.mqtt.Ping()
		}
	}
}
