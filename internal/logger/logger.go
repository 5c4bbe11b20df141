// Package logger implements a single-writer-goroutine logger: callers
// enqueue messages without blocking, and one goroutine drains the
// queue to a fixed, closed set of workers (console and rotating
// file). It is not open for third-party worker extension — the core
// does not need that, per the collaborator's design note.
package logger

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"clib/internal/ring"
)

// Level orders log severities, matching the original's enum.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Message is one queued log line.
type Message struct {
	Level   Level
	Content string
	At      time.Time
}

// Worker consumes messages. consoleWorker and fileWorker are the only
// implementations this package ships.
type Worker interface {
	Log(msg Message)
	Close() error
}

// Config controls queue sizing, worker selection and per-level rate
// limiting.
type Config struct {
	QueueCapacity int
	LogDir        string // empty disables the file worker
	FilePrefix    string // defaults to "clib"

	// RateLimit caps sustained messages per second; Burst allows short
	// spikes above that rate. One limiter is shared by all levels, so
	// messages of every level draw on the same budget. Zero disables
	// limiting.
	RateLimit rate.Limit
	Burst     int
}

// Logger owns the MPSC queue and the writer goroutine.
type Logger struct {
	queue   *ring.MPSC[Message]
	workers []Worker
	limiter *rate.Limiter

	done    chan struct{}
	stopped chan struct{}

	emitted prometheus.Counter
	dropped prometheus.Counter
}

// New builds a Logger and starts its writer goroutine.
func New(cfg Config) (*Logger, error) {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 1024
	}
	queue, err := ring.NewMPSC[Message](cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}

	l := &Logger{
		queue:   queue,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		emitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clib_logger_messages_emitted_total",
			Help: "Messages the logger has written to its workers.",
		}),
		dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clib_logger_messages_dropped_total",
			Help: "Messages dropped because the queue was full or rate-limited.",
		}),
	}

	l.workers = append(l.workers, newConsoleWorker())
	if cfg.LogDir != "" {
		fw, err := newFileWorker(cfg.LogDir, cfg.FilePrefix)
		if err != nil {
			return nil, err
		}
		l.workers = append(l.workers, fw)
	}

	if cfg.RateLimit > 0 {
		l.limiter = rate.NewLimiter(cfg.RateLimit, cfg.Burst)
	}

	go l.writeLoop()
	return l, nil
}

// Log enqueues a message without blocking. Under sustained overload
// (queue full, or the optional rate limiter rejecting the message) it
// drops the message and counts it rather than stalling the caller.
func (l *Logger) Log(level Level, format string, args ...any) {
	if l.limiter != nil && !l.limiter.Allow() {
		l.dropped.Inc()
		return
	}
	msg := Message{Level: level, Content: fmt.Sprintf(format, args...), At: time.Now()}
	if !l.queue.TryPush(msg) {
		l.dropped.Inc()
	}
}

func (l *Logger) writeLoop() {
	defer close(l.stopped)
	for {
		msg, ok := l.queue.TryPop()
		if !ok {
			select {
			case <-l.done:
				l.drain()
				return
			default:
			}
			continue
		}
		l.dispatch(msg)
	}
}

func (l *Logger) drain() {
	for {
		msg, ok := l.queue.TryPop()
		if !ok {
			return
		}
		l.dispatch(msg)
	}
}

func (l *Logger) dispatch(msg Message) {
	for _, w := range l.workers {
		w.Log(msg)
	}
	l.emitted.Inc()
}

// Shutdown stops the writer goroutine after draining the queue, and
// closes all workers.
func (l *Logger) Shutdown() error {
	close(l.done)
	<-l.stopped
	var firstErr error
	for _, w := range l.workers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
