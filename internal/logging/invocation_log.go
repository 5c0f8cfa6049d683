package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"model_catalog/internal/utils"
)

// Invocation is one line of the invocation log.
type Invocation struct {
	Timestamp       time.Time `json:"timestamp"`
	Item            string    `json:"item"`
	ModelID         string    `json:"model_id,omitempty"`
	PromptKind      string    `json:"prompt_kind,omitempty"`
	Status          int       `json:"status"`
	LatencyMs       int64     `json:"latency_ms"`
	PromptChars     int       `json:"prompt_chars"`
	CompletionChars int       `json:"completion_chars"`
	Error           string    `json:"error,omitempty"`
}

// InvocationLogConfig configures NewInvocationLog.
type InvocationLogConfig struct {
	// FileTemplate names the log files, e.g. "/var/log/catalog/invocations-%s.jsonl".
	// %s is replaced by the file's creation time.
	FileTemplate  string
	MaxSize       int64 // bytes before rotation
	MaxFiles      int   // rotated files kept
	BufferSize    int   // queued records before Record drops
	FlushInterval time.Duration
}

// InvocationLog writes invocations as JSON lines from a background goroutine,
// with size-based rotation and periodic flushes.
type InvocationLog struct {
	cfg    InvocationLogConfig
	logger *utils.Logger

	mu          sync.Mutex
	currentFile string
	file        *os.File
	writer      *bufio.Writer
	currentSize int64
	seq         int
	dropped     int64

	recordCh chan Invocation
	doneCh   chan struct{}
	wg       sync.WaitGroup
	closed   bool
}

// NewInvocationLog opens the first log file and starts the writer.
func NewInvocationLog(cfg InvocationLogConfig) (*InvocationLog, error) {
	if cfg.FileTemplate == "" {
		return nil, fmt.Errorf("invocation log file template is required")
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}
	if cfg.MaxFiles < 1 {
		cfg.MaxFiles = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	l := &InvocationLog{
		cfg:      cfg,
		logger:   utils.NewLogger("invocation-log"),
		recordCh: make(chan Invocation, cfg.BufferSize),
		doneCh:   make(chan struct{}),
	}
	if err := l.openFile(); err != nil {
		return nil, err
	}

	l.wg.Add(1)
	go l.run()

	return l, nil
}

// Record queues inv. When the queue is full the record is dropped.
func (l *InvocationLog) Record(inv Invocation) {
	if inv.Timestamp.IsZero() {
		inv.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.recordCh <- inv:
	default:
		l.dropped++
	}
}

// Dropped returns how many records were discarded because the queue was full.
func (l *InvocationLog) Dropped() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// CurrentFile returns the path of the file being written.
func (l *InvocationLog) CurrentFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentFile
}

// Shutdown drains queued records, flushes and closes the file. It is safe to
// call more than once.
func (l *InvocationLog) Shutdown() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	close(l.doneCh)
	l.wg.Wait()
}

// newFileName stamps the template with the creation time and a sequence
// number, so names sort chronologically and rotations within one second get
// distinct files.
func (l *InvocationLog) newFileName() string {
	l.seq++
	stamp := fmt.Sprintf("%s.%06d", time.Now().Format("20060102150405"), l.seq)
	return fmt.Sprintf(l.cfg.FileTemplate, stamp)
}

// openFile must be called with mu held or before run starts.
func (l *InvocationLog) openFile() error {
	name := l.newFileName()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	file, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open invocation log: %w", err)
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	l.currentFile = name
	l.currentSize = fi.Size()
	l.file = file
	l.writer = bufio.NewWriter(file)
	return nil
}

func (l *InvocationLog) run() {
	defer l.wg.Done()
	ticker := time.NewTicker(l.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case inv := <-l.recordCh:
			l.write(inv)
		case <-ticker.C:
			l.mu.Lock()
			if err := l.writer.Flush(); err != nil {
				l.logger.Warn("Failed to flush invocation log", "error", err)
			}
			l.mu.Unlock()
		case <-l.doneCh:
			for {
				select {
				case inv := <-l.recordCh:
					l.write(inv)
				default:
					l.mu.Lock()
					_ = l.writer.Flush()
					_ = l.file.Close()
					l.mu.Unlock()
					return
				}
			}
		}
	}
}

func (l *InvocationLog) write(inv Invocation) {
	data, err := json.Marshal(inv)
	if err != nil {
		l.logger.Warn("Failed to encode invocation", "item", inv.Item, "error", err)
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentSize > 0 && l.currentSize+int64(len(data)) > l.cfg.MaxSize {
		if err := l.rotate(); err != nil {
			l.logger.Error("Failed to rotate invocation log", "error", err)
		}
	}

	n, err := l.writer.Write(data)
	l.currentSize += int64(n)
	if err != nil {
		l.logger.Warn("Failed to write invocation", "item", inv.Item, "error", err)
	}
}

// rotate must be called with mu held.
func (l *InvocationLog) rotate() error {
	if err := l.writer.Flush(); err != nil {
		return err
	}
	if err := l.file.Close(); err != nil {
		return err
	}
	if err := l.openFile(); err != nil {
		return err
	}
	return l.cleanupOldFiles()
}

// cleanupOldFiles removes the oldest files beyond MaxFiles. The timestamp in
// the file names sorts chronologically.
func (l *InvocationLog) cleanupOldFiles() error {
	matches, err := filepath.Glob(fmt.Sprintf(l.cfg.FileTemplate, "*"))
	if err != nil {
		return err
	}
	sort.Strings(matches)

	for i := 0; i < len(matches)-l.cfg.MaxFiles; i++ {
		if err := os.Remove(matches[i]); err != nil {
			l.logger.Warn("Failed to remove rotated invocation log", "file", matches[i], "error", err)
		}
	}
	return nil
}
