package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hpcloud/tail"

	outpost "github.com/outpost-telemetry/outpost-go"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := outpost.NewLogger(outpost.Config{
		ServiceName:   cfg.ServiceName,
		Endpoint:      cfg.Endpoint,
		Token:         cfg.Token,
		Insecure:      cfg.Insecure,
		MaxBatchSize:  cfg.BatchSize,
		FlushInterval: cfg.FlushInterval(),
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	metrics := newForwardMetrics(logger.Stats)
	forwarder := newForwarder(cfg, logger, metrics)
	forwarder.Start()

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.handler())
			log.Printf("Metrics listening on %s", cfg.Metrics.Listen)
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Printf("Metrics listener failed: %v", err)
			}
		}()
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan
	log.Println("Received shutdown signal")

	forwarder.Stop()
	logger.Shutdown()
	log.Println("All queued events flushed")
}

// forwarder discovers *.log files under the configured root and tails each
// one, shipping every new line through the client.
type forwarder struct {
	config  *Config
	logger  *outpost.Logger
	metrics *forwardMetrics

	// runID tags every shipped line so one forwarder run can be isolated
	// on the query side.
	runID    string
	hostname string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	seenFiles map[string]struct{}
}

func newForwarder(config *Config, logger *outpost.Logger, metrics *forwardMetrics) *forwarder {
	ctx, cancel := context.WithCancel(context.Background())
	hostname, _ := os.Hostname()

	return &forwarder{
		config:    config,
		logger:    logger,
		metrics:   metrics,
		runID:     uuid.NewString(),
		hostname:  hostname,
		ctx:       ctx,
		cancel:    cancel,
		seenFiles: make(map[string]struct{}),
	}
}

func (f *forwarder) Start() {
	log.Printf("Starting forwarder: root=%s, scan interval=%s, run id=%s",
		f.config.LogRoot, f.config.ScanInterval(), f.runID)

	f.wg.Add(1)
	go f.scanner()
}

func (f *forwarder) Stop() {
	log.Println("Stopping forwarder...")
	f.cancel()
	f.wg.Wait()
	log.Println("Forwarder stopped")
}

func (f *forwarder) scanner() {
	defer f.wg.Done()

	f.scanFiles()

	ticker := time.NewTicker(f.config.ScanInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.scanFiles()

		case <-f.ctx.Done():
			return
		}
	}
}

func (f *forwarder) scanFiles() {
	files, err := f.discoverLogFiles()
	if err != nil {
		log.Printf("Error discovering log files: %v", err)
		return
	}

	for _, file := range files {
		f.mu.Lock()
		_, seen := f.seenFiles[file]
		if !seen {
			f.seenFiles[file] = struct{}{}
		}
		f.mu.Unlock()

		if seen {
			continue
		}

		f.metrics.filesDiscovered.Inc()
		log.Printf("Tailing new file %s", file)

		f.wg.Add(1)
		go f.tailFile(file)
	}
}

func (f *forwarder) discoverLogFiles() ([]string, error) {
	var logFiles []string

	err := filepath.Walk(f.config.LogRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("Error accessing path %s: %v", path, err)
			return nil
		}

		if !info.IsDir() && strings.HasSuffix(info.Name(), ".log") {
			logFiles = append(logFiles, path)
		}
		return nil
	})

	return logFiles, err
}

func (f *forwarder) tailFile(path string) {
	defer f.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Tail panicked for %s: %v", path, r)
			f.forget(path)
		}
	}()

	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Poll:     true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		log.Printf("Failed to tail file %s: %v", path, err)
		f.metrics.tailErrors.Inc()
		f.forget(path)
		return
	}
	defer t.Cleanup()

	checkTicker := time.NewTicker(1 * time.Second)
	defer checkTicker.Stop()

	lastActivity := time.Now()

	for {
		select {
		case line := <-t.Lines:
			if line == nil {
				continue
			}
			if line.Err != nil {
				log.Printf("Error reading from %s: %v", path, line.Err)
				f.metrics.tailErrors.Inc()
				continue
			}

			f.ship(path, line.Text)
			lastActivity = time.Now()

		case <-checkTicker.C:
			// waking up from blocking line reading to check context
			// status and idle timeout
			if f.config.IdleTimeout() > 0 && time.Since(lastActivity) > f.config.IdleTimeout() {
				f.forget(path)
				return
			}

		case <-f.ctx.Done():
			return
		}
	}
}

// forget lets a later scan rediscover the file.
func (f *forwarder) forget(path string) {
	f.mu.Lock()
	delete(f.seenFiles, path)
	f.mu.Unlock()
}

func (f *forwarder) ship(path, text string) {
	attrs := []outpost.Attribute{
		outpost.String("log.file", filepath.Base(path)),
		outpost.String("host.name", f.hostname),
		outpost.String("run.id", f.runID),
	}

	switch sniffLevel(text) {
	case "DEBUG":
		f.logger.Debug(text, attrs...)
	case "WARNING":
		f.logger.Warn(text, attrs...)
	case "ERROR":
		f.logger.Error(text, nil, attrs...)
	default:
		f.logger.Info(text, attrs...)
	}

	f.metrics.linesShipped.WithLabelValues(filepath.Base(path)).Inc()
}

var levelTokens = []struct {
	token string
	level string
}{
	{"DEBUG", "DEBUG"},
	{"INFO", "INFO"},
	{"WARN", "WARNING"},
	{"ERROR", "ERROR"},
}

// sniffLevel guesses a line's severity from the earliest level token found
// in it, defaulting to info.
func sniffLevel(line string) string {
	upper := strings.ToUpper(line)
	best := "INFO"
	bestIdx := len(upper) + 1

	for _, lt := range levelTokens {
		if idx := strings.Index(upper, lt.token); idx >= 0 && idx < bestIdx {
			bestIdx = idx
			best = lt.level
		}
	}
	return best
}
