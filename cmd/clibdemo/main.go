package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"clib/internal/cmap"
	"clib/internal/logger"
	"clib/internal/signalbus"
	"clib/internal/threadpool"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🧵 ================================")
	log.Println("🧵  CLIB - CONCURRENCY CORE DEMO")
	log.Println("🧵 ================================")

	logDir := os.Getenv("CLIB_LOG_DIR")

	lg, err := logger.New(logger.Config{QueueCapacity: 4096, LogDir: logDir})
	if err != nil {
		log.Fatalf("logger.New: %v", err)
	}
	defer lg.Shutdown()

	pool := threadpool.New(0, 1024)

	table := cmap.New[string, int](1 << 14, cmap.DefaultHasher[string]())

	bus := signalbus.New()
	shutdownCh := make(chan struct{})
	bus.Subscribe(syscall.SIGINT, signalbus.Head, func(os.Signal) {
		lg.Log(logger.WARN, "received interrupt, shutting down")
	})
	bus.Subscribe(syscall.SIGINT, signalbus.Tail, func(os.Signal) {
		close(shutdownCh)
	})
	bus.Subscribe(syscall.SIGTERM, signalbus.Tail, func(os.Signal) {
		close(shutdownCh)
	})
	bus.Start()
	defer bus.Stop()

	const jobs = 10000
	var wg sync.WaitGroup
	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		i := i
		pool.Submit(func() {
			defer wg.Done()
			key := fmt.Sprintf("job-%d", i)
			table.Set(key, i*i)
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		lg.Log(logger.INFO, "processed %d jobs, table holds %d entries", jobs, table.Len())
	case <-shutdownCh:
		lg.Log(logger.WARN, "shutdown requested before all jobs completed")
	case <-time.After(30 * time.Second):
		lg.Log(logger.ERROR, "timed out waiting for jobs to complete")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Shutdown(ctx); err != nil {
		lg.Log(logger.ERROR, "threadpool shutdown: %v", err)
	}

	log.Println("🧵 done")
}
