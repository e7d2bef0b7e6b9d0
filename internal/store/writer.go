package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/logging"
)

// writeTimeout bounds a single backend write.
const writeTimeout = 5 * time.Second

// Writer persists values in the background. Put never blocks on the
// backend: values are coalesced per key and the latest one is written by a
// single goroutine. Failures are logged and otherwise ignored.
type Writer struct {
	kv  core.KV
	log *log.Logger

	mu      sync.Mutex
	pending map[string][]byte
	closed  bool

	wake    chan struct{}
	flushes chan chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

// NewWriter starts a writer over kv.
func NewWriter(kv core.KV, logger *log.Logger) *Writer {
	w := &Writer{
		kv:      kv,
		log:     logging.With(logger, "component", "store"),
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// KV returns the backend the writer persists to.
func (w *Writer) KV() core.KV {
	return w.kv
}

// Put schedules value to be written under key, replacing any value still
// waiting for the same key. Calls after Close are dropped.
func (w *Writer) Put(key string, value []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.Debug("write after close dropped", "key", key)
		return
	}
	w.pending[key] = value
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// PutJSON marshals v and schedules it under key.
func (w *Writer) PutJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.log.Error("failed to encode state", "key", key, "err", err)
		return
	}
	w.Put(key, data)
}

// Flush blocks until every value scheduled before the call is written, or
// ctx is done.
func (w *Writer) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case w.flushes <- reply:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes whatever is pending and stops the background goroutine. It
// does not close the backend.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)

	for {
		select {
		case <-w.wake:
			w.drain()
		case reply := <-w.flushes:
			w.drain()
			close(reply)
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string][]byte)
	w.mu.Unlock()

	for key, value := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := w.kv.Put(ctx, key, value)
		cancel()
		if err != nil {
			w.log.Warn("persist failed", "key", key, "err", err)
			continue
		}
		w.log.Debug("persisted", "key", key, "bytes", len(value))
	}
}

// LoadJSON reads key from kv into v. It reports false when the key is
// missing.
func LoadJSON(ctx context.Context, kv core.KV, key string, v any) (bool, error) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
