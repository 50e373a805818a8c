package persist

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Settings selects and configures a slot.
type Settings struct {
	Backend string
	Dir     string // file backend directory
	Key     string
	Codec   string
	Timeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open builds an Adapter from settings.
func Open(s Settings, logger log.FieldLogger) (*Adapter, error) {
	codec, err := CodecByName(s.Codec)
	if err != nil {
		return nil, err
	}

	var kv KV
	switch s.Backend {
	case "", BackendFile:
		if s.Dir == "" {
			return nil, fmt.Errorf("file backend needs a directory")
		}
		kv = NewFile(s.Dir, "."+codec.Name())
	case BackendRedis:
		if s.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend needs an address")
		}
		kv = DialRedis(s.RedisAddr, s.RedisPassword, s.RedisDB, logger)
	case BackendMemory:
		kv = NewMemory()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}

	return NewAdapter(kv,
		WithKey(s.Key),
		WithCodec(codec),
		WithTimeout(s.Timeout),
		WithLogger(logger),
	), nil
}

// SlotPath returns the file holding the list when the adapter is file
// backed, and false otherwise.
func (a *Adapter) SlotPath() (string, bool) {
	f, ok := a.kv.(*File)
	if !ok {
		return "", false
	}
	return f.Path(a.key), true
}
