package logger

import (
	"fmt"
	"os"
)

// consoleWorker writes messages to stderr, one line per message.
type consoleWorker struct{}

func newConsoleWorker() *consoleWorker { return &consoleWorker{} }

func (c *consoleWorker) Log(msg Message) {
	fmt.Fprintf(os.Stderr, "%s [%s] %s\n", msg.At.Format("2006-01-02 15:04:05"), msg.Level, msg.Content)
}

func (c *consoleWorker) Close() error { return nil }
