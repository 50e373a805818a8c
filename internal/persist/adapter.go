package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

// DefaultKey names the slot. The version suffix changes when the record
// layout does; there is no version field inside the payload.
const DefaultKey = "todo-app.tasks.v1"

// DefaultTimeout bounds a single slot read or write.
const DefaultTimeout = 5 * time.Second

// Adapter reads and writes the whole task list under one key.
type Adapter struct {
	kv      KV
	key     string
	codec   Codec
	timeout time.Duration
	log     log.FieldLogger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithCodec overrides the JSON codec.
func WithCodec(c Codec) Option {
	return func(a *Adapter) {
		if c != nil {
			a.codec = c
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger for recovered read failures.
func WithLogger(l log.FieldLogger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAdapter returns an Adapter over kv.
func NewAdapter(kv KV, opts ...Option) *Adapter {
	a := &Adapter{
		kv:      kv,
		key:     DefaultKey,
		codec:   JSONCodec{},
		timeout: DefaultTimeout,
		log:     log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the slot key.
func (a *Adapter) Key() string { return a.key }

// Codec returns the codec in use.
func (a *Adapter) Codec() Codec { return a.codec }

// Load returns the stored list. A missing, unreadable or malformed slot
// yields an empty list; Load never fails.
func (a *Adapter) Load() []task.Task {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	data, err := a.kv.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return []task.Task{}
	}
	if err != nil {
		a.log.WithError(err).WithField("key", a.key).Warn("reading task slot failed, starting empty")
		return []task.Task{}
	}
	if len(data) == 0 {
		return []task.Task{}
	}

	tasks, err := a.codec.Unmarshal(data)
	if err != nil {
		a.log.WithError(err).WithFields(log.Fields{
			"key":   a.key,
			"codec": a.codec.Name(),
		}).Warn("task slot is corrupt, starting empty")
		return []task.Task{}
	}
	return tasks
}

// Save overwrites the slot with the full list.
func (a *Adapter) Save(tasks []task.Task) error {
	data, err := a.codec.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.kv.Set(ctx, a.key, data); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

// Close releases the underlying KV.
func (a *Adapter) Close() error {
	return a.kv.Close()
}
