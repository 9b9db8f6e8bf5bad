package eventpipe

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
)

// Config holds configuration for the event pipe.
type Config struct {
	Path string `yaml:"path"` // Path to named pipe (e.g., "/tmp/gowedge-events")
}

// Op is the kind of pipe command.
type Op int

const (
	OpCodes Op = iota // replay a comma separated code stream
	OpValue           // set a target's field value
	OpFlush           // flush a target immediately
)

// Command is one parsed pipe line.
type Command struct {
	Op     Op
	Target string
	Arg    string
}

// CommandHandler is called when a command is received from the pipe.
type CommandHandler func(Command)

// EventPipe listens for commands on a named pipe.
type EventPipe struct {
	path    string
	handler CommandHandler
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a new EventPipe. Returns nil if path is empty.
func New(cfg Config, handler CommandHandler) (*EventPipe, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	// Remove existing pipe if it exists
	os.Remove(cfg.Path)

	if err := syscall.Mkfifo(cfg.Path, 0666); err != nil {
		return nil, fmt.Errorf("create named pipe %s: %w", cfg.Path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &EventPipe{
		path:    cfg.Path,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start begins listening for commands on the pipe.
// This should be called as a goroutine.
func (ep *EventPipe) Start() {
	log.Printf("Event pipe listening on %s", ep.path)

	for {
		select {
		case <-ep.ctx.Done():
			return
		default:
		}

		// Blocks until a writer connects
		file, err := os.OpenFile(ep.path, os.O_RDONLY, 0)
		if err != nil {
			if ep.ctx.Err() != nil {
				return
			}
			log.Printf("Event pipe open error: %v", err)
			continue
		}

		ep.serve(file)
		file.Close()
		// Writer closed the pipe, loop back to wait for next writer
	}
}

func (ep *EventPipe) serve(f *os.File) {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if ep.ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cmd, err := parseLine(line)
		if err != nil {
			log.Printf("Event pipe parse error: %v", err)
			continue
		}

		if ep.handler != nil {
			ep.handler(cmd)
		}
	}
}

// Close stops the event pipe listener and removes the pipe.
func (ep *EventPipe) Close() error {
	ep.cancel()
	// Unblock a pending open so Start can observe the cancellation.
	if w, err := os.OpenFile(ep.path, os.O_WRONLY|syscall.O_NONBLOCK, 0); err == nil {
		w.Close()
	}
	return os.Remove(ep.path)
}

// parseLine parses a command line into a Command.
// Command format:
//
//	codes <target> <c1,c2,...>      - Replay key codes as if typed
//	value <target> <text>           - Set the field value a paste resolves to
//	flush <target>                  - Flush the target now
func parseLine(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	cmd := strings.ToLower(parts[0])
	if len(parts) < 2 {
		return Command{}, fmt.Errorf("%s requires a target", cmd)
	}
	target := parts[1]

	switch cmd {
	case "codes", "data":
		if len(parts) < 3 {
			return Command{}, fmt.Errorf("codes requires a code list")
		}
		return Command{Op: OpCodes, Target: target, Arg: strings.Join(parts[2:], "")}, nil

	case "value", "paste":
		// Keep the text as written, including inner spacing.
		rest := strings.TrimSpace(line[len(parts[0]):])
		rest = strings.TrimSpace(rest[len(target):])
		return Command{Op: OpValue, Target: target, Arg: rest}, nil

	case "flush":
		return Command{Op: OpFlush, Target: target}, nil

	default:
		return Command{}, fmt.Errorf("unknown command: %s", cmd)
	}
}
