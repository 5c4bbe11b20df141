package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogWritesToFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Config{QueueCapacity: 16, LogDir: dir, FilePrefix: "test"})
	if err != nil {
		t.Fatal(err)
	}

	l.Log(INFO, "hello %s", "world")

	deadline := time.Now().Add(time.Second)
	var path string
	for time.Now().Before(deadline) {
		matches, _ := filepath.Glob(filepath.Join(dir, "test-*.log"))
		if len(matches) > 0 {
			path = matches[0]
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := l.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if path == "" {
		t.Fatal("expected a log file to be created")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "hello world") {
		t.Fatalf("log file content = %q, want it to contain %q", content, "hello world")
	}
}

func TestLogNeverBlocksUnderOverload(t *testing.T) {
	l, err := New(Config{QueueCapacity: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Shutdown()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			l.Log(DEBUG, "msg %d", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Log calls blocked under sustained overload")
	}
}
