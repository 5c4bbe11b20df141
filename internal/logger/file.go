package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileWorker writes messages to a file that rotates daily, named
// "<prefix>-YYYY-MM-DD.log", matching the original's makeFile scheme.
type fileWorker struct {
	dir    string
	prefix string

	mu      sync.Mutex
	current *os.File
	day     string
}

func newFileWorker(dir, prefix string) (*fileWorker, error) {
	if prefix == "" {
		prefix = "clib"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	return &fileWorker{dir: dir, prefix: prefix}, nil
}

func (f *fileWorker) fileFor(at time.Time) (*os.File, error) {
	day := at.Format("2006-01-02")
	if f.current != nil && f.day == day {
		return f.current, nil
	}
	if f.current != nil {
		f.current.Close()
	}
	path := filepath.Join(f.dir, fmt.Sprintf("%s-%s.log", f.prefix, day))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	f.current = file
	f.day = day
	return file, nil
}

func (f *fileWorker) Log(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := f.fileFor(msg.At)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: file worker: %v\n", err)
		return
	}
	fmt.Fprintf(file, "%s [%s] %s\n", msg.At.Format("2006-01-02 15:04:05"), msg.Level, msg.Content)
}

func (f *fileWorker) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil
	}
	return f.current.Close()
}
