package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/tasklist/internal/activity"
	"github.com/twiced-technology-gmbh/tasklist/internal/config"
	"github.com/twiced-technology-gmbh/tasklist/internal/filelock"
	"github.com/twiced-technology-gmbh/tasklist/internal/logging"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/persist"
	"github.com/twiced-technology-gmbh/tasklist/internal/store"
)

// sessionLockName guards read-modify-write cycles against other tasklist
// processes using the same list directory.
const sessionLockName = "session"

// sessionMode says how a session may change the list.
type sessionMode int

const (
	// readOnly sessions never write.
	readOnly sessionMode = iota
	// exclusive sessions hold the list lock from load until Close.
	exclusive
	// shared sessions stay open while other processes write, and take the
	// list lock around each change instead.
	shared
)

// session bundles everything a command needs to work on the list.
type session struct {
	cfg     *config.Config
	log     *log.Logger
	adapter *persist.Adapter
	store   *store.Store

	saveErr error
	closers []func() error
}

// openSession resolves the list, applies environment overrides and loads
// the store. Locking applies to the file backend only.
func openSession(mode sessionMode) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnvFile(cfg.Dir()); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.LogPath(),
	})
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: logger}
	s.closers = append(s.closers, logCloser.Close)

	fileBacked := cfg.Storage.Backend == persist.BackendFile
	lockPath := filepath.Join(cfg.Dir(), sessionLockName+filelock.Suffix)

	if mode == exclusive && fileBacked {
		unlock, err := filelock.Lock(lockPath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("acquiring lock: %w", err)
		}
		s.closers = append(s.closers, unlock)
	}

	adapter, err := persist.Open(persistSettings(cfg), logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.adapter = adapter
	s.closers = append(s.closers, adapter.Close)

	opts := []store.Option{store.WithLogger(logger)}
	if mode == shared {
		var lock store.LockFunc
		if fileBacked {
			lock = func() (func() error, error) { return filelock.Lock(lockPath) }
		}
		opts = append(opts, store.WithSharedSlot(lock))
	}
	s.store = store.New(adapter, opts...)
	s.closers = append(s.closers, wrapStop(activity.Record(s.store, cfg.Dir())))
	s.closers = append(s.closers, wrapStop(s.store.Subscribe(func(e store.Event) {
		if e.Err != nil {
			s.saveErr = e.Err
		}
	})))
	return s, nil
}

// peek runs fn over a read-only session.
func peek(fn func(s *session) error) error {
	s, err := openSession(readOnly)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func persistSettings(cfg *config.Config) persist.Settings {
	return persist.Settings{
		Backend:       cfg.Storage.Backend,
		Dir:           cfg.Dir(),
		Key:           cfg.Storage.Key,
		Codec:         cfg.Storage.Codec,
		Timeout:       cfg.StorageTimeout(),
		RedisAddr:     cfg.RedisAddr(),
		RedisPassword: cfg.Storage.Redis.Password,
		RedisDB:       cfg.Storage.Redis.DB,
	}
}

func wrapStop(stop func()) func() error {
	return func() error {
		stop()
		return nil
	}
}

// warnUnsaved reports a change that was applied but could not be written.
func (s *session) warnUnsaved(w io.Writer) {
	if s.saveErr != nil {
		output.Warnf(w, "change not saved: %v", s.saveErr)
	}
}

// Close releases everything in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
	s.closers = nil
}
