package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Event kinds.
const (
	evDig         = "dig"
	evUnbreakable = "unbreakable"
	evVein        = "vein"
	evRefuel      = "refuel"
	evResupply    = "resupply"
	evIteration   = "iteration"
)

// Something notable the turtle did, for stats and the journal.
type mineEvent struct {
	Time   time.Time `json:"time"`
	Turtle turtleID  `json:"turtle,omitempty"`
	Kind   string    `json:"kind"`
	Pos    vec3      `json:"pos"`
	Name   string    `json:"name,omitempty"`
	Count  int       `json:"count,omitempty"`
}

type eventSink interface {
	event(ev mineEvent)
}

type eventSinkFunc func(ev mineEvent)

func (f eventSinkFunc) event(ev mineEvent) {
	f(ev)
}

// Fans an event out to several sinks.
type eventSinks []eventSink

func (s eventSinks) event(ev mineEvent) {
	for _, sink := range s {
		if sink != nil {
			sink.event(ev)
		}
	}
}

func emit(sink eventSink, ev mineEvent) {
	if sink != nil {
		sink.event(ev)
	}
}

// eventJournal appends events as zstd compressed JSON lines, one file per
// UTC day under <dir>/journal.
type eventJournal struct {
	dir string
	now func() time.Time

	mu  sync.Mutex
	day string
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func newEventJournal(dir string) *eventJournal {
	return &eventJournal{dir: dir, now: time.Now}
}

func journalPath(dir, day string) string {
	return filepath.Join(dir, "journal", day+".jsonl.zst")
}

func (j *eventJournal) event(ev mineEvent) {
	if err := j.write(ev); err != nil {
		log.Printf("journal: error: %v", err)
	}
}

func (j *eventJournal) write(ev mineEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if ev.Time.IsZero() {
		ev.Time = j.now()
	}
	day := ev.Time.UTC().Format("2006-01-02")
	if day != j.day {
		if err := j.rotateLocked(day); err != nil {
			return err
		}
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(raw); err != nil {
		return err
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := j.w.Flush(); err != nil {
		return err
	}
	// Each flush ends a zstd block so a crash loses at most one event.
	return j.enc.Flush()
}

func (j *eventJournal) rotateLocked(day string) error {
	if err := j.closeLocked(); err != nil {
		return err
	}
	path := journalPath(j.dir, day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		return fmt.Errorf("journal %s: %w", path, err)
	}
	j.day = day
	j.f = f
	j.enc = enc
	j.w = bufio.NewWriter(enc)
	return nil
}

func (j *eventJournal) close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

func (j *eventJournal) closeLocked() error {
	if j.f == nil {
		return nil
	}
	var first error
	if err := j.w.Flush(); err != nil {
		first = err
	}
	if err := j.enc.Close(); err != nil && first == nil {
		first = err
	}
	if err := j.f.Close(); err != nil && first == nil {
		first = err
	}
	j.f, j.enc, j.w, j.day = nil, nil, nil, ""
	return first
}

// Decodes a journal stream, calling fn for every event.
func readJournal(r io.Reader, fn func(ev mineEvent) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var ev mineEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return fmt.Errorf("journal: bad line: %w", err)
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return sc.Err()
}
