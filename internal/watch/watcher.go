// Package watch turns a directory of transcript files into a recognition
// source. A speech-to-text tool can drop one file per finalized chunk or keep
// appending to one file. Every complete line is delivered exactly once; an
// unterminated last line waits for its newline.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/klytics/voxtable/internal/recognizer"
)

// Config selects which files become transcript chunks.
type Config struct {
	Directory string
	// Pattern is a glob matched against the base name. Default "*.txt".
	Pattern string
	// Debounce is how long a file must be quiet before it is read.
	Debounce time.Duration
}

// Source watches Config.Directory and implements recognizer.Source.
type Source struct {
	Config Config
	Logger *slog.Logger

	watcher  *fsnotify.Watcher
	events   chan recognizer.Event
	done     chan struct{}
	mu       sync.Mutex
	debounce map[string]*time.Timer
	closed   bool

	// offsets holds how far each file has been delivered; fresh marks files
	// created since they were last read.
	offsets map[string]int64
	fresh   map[string]bool
	readMu  sync.Mutex
}

// New starts watching cfg.Directory.
func New(cfg Config) (*Source, error) {
	if cfg.Pattern == "" {
		cfg.Pattern = "*.txt"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", cfg.Pattern, err)
	}

	dir, err := filepath.Abs(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", cfg.Directory, err)
	}
	cfg.Directory = dir

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("could not watch %s: %w", dir, err)
	}

	s := &Source{
		Config:   cfg,
		Logger:   slog.Default(),
		watcher:  fsw,
		events:   make(chan recognizer.Event, 64),
		done:     make(chan struct{}),
		debounce: make(map[string]*time.Timer),
		offsets:  make(map[string]int64),
		fresh:    make(map[string]bool),
	}
	go s.loop()
	return s, nil
}

// Next blocks until a transcript line arrives. It returns io.EOF after Close.
func (s *Source) Next(ctx context.Context) (recognizer.Event, error) {
	select {
	case <-ctx.Done():
		return recognizer.Event{}, ctx.Err()
	case <-s.done:
		return recognizer.Event{}, io.EOF
	case ev := <-s.events:
		return ev, nil
	}
}

// Restart is a no-op: the directory stays watched across recognition errors.
func (s *Source) Restart(context.Context) error {
	return nil
}

// Close stops watching.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, t := range s.debounce {
		t.Stop()
	}
	close(s.done)
	s.mu.Unlock()
	return s.watcher.Close()
}

func (s *Source) loop() {
	s.Logger.Debug("watching for transcripts", "dir", s.Config.Directory, "pattern", s.Config.Pattern)
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.Logger.Warn("watch error", "error", err)
		}
	}
}

func (s *Source) handleEvent(event fsnotify.Event) {
	path := event.Name
	if !s.matches(path) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(s.offsets, path)
		delete(s.fresh, path)
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if event.Has(fsnotify.Create) {
		s.fresh[path] = true
	}
	if timer, ok := s.debounce[path]; ok {
		timer.Stop()
	}
	s.debounce[path] = time.AfterFunc(s.Config.Debounce, func() {
		s.processFile(path)
	})
}

func (s *Source) processFile(path string) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	s.mu.Lock()
	delete(s.debounce, path)
	offset := s.offsets[path]
	if s.fresh[path] {
		offset = 0
		delete(s.fresh, path)
	}
	s.mu.Unlock()

	data, offset, err := readFrom(path, offset)
	if err != nil {
		s.Logger.Warn("could not read transcript", "path", path, "error", err)
		return
	}

	// Hold back an unterminated last line until its newline is written.
	end := bytes.LastIndexByte(data, '\n')
	s.mu.Lock()
	s.offsets[path] = offset + int64(end+1)
	s.mu.Unlock()
	if end < 0 {
		return
	}
	s.Logger.Debug("transcript file", "path", path, "offset", offset, "bytes", end+1)

	for _, line := range strings.Split(string(data[:end]), "\n") {
		ev, ok := recognizer.ParseLine(line)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

// readFrom returns the bytes of path past offset. A file shorter than offset
// was truncated or replaced and is read from the start.
func readFrom(path string, offset int64) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, err
	}
	return data, offset, nil
}

// matches reports whether path is a transcript file. Editor temp files and
// dotfiles are skipped.
func (s *Source) matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") || strings.HasSuffix(base, "~") {
		return false
	}
	matched, _ := filepath.Match(s.Config.Pattern, base)
	return matched
}
