// Package config handles task list configuration.
package config

const (
	// DefaultDir is the list directory name searched for from the working directory.
	DefaultDir = ".tasklist"
	// DefaultName is the list name written by init when none is given.
	DefaultName = "tasks"

	// DefaultBackend is the storage backend for new lists.
	DefaultBackend = "file"
	// DefaultKey is the slot key. The version suffix changes with the record layout.
	DefaultKey = "todo-app.tasks.v1"
	// DefaultCodec is the slot encoding.
	DefaultCodec = "json"
	// DefaultTimeout bounds one slot read or write.
	DefaultTimeout = "5s"
	// DefaultRedisAddr is used when the redis backend is selected without an address.
	DefaultRedisAddr = "localhost:6379"

	// DefaultLogLevel applies to diagnostics.
	DefaultLogLevel = "warn"

	// DefaultToastDuration is how long a TUI notification stays visible.
	DefaultToastDuration = "1600ms"
	// DefaultFilter is the filter the TUI opens with.
	DefaultFilter = "all"

	// DefaultServerAddr is the listen address for serve.
	DefaultServerAddr = "127.0.0.1:8080"

	// ConfigFileName is the name of the config file within the list directory.
	ConfigFileName = "config.yml"
	// EnvFileName is an optional dotenv file within the list directory.
	EnvFileName = ".env"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3
)

// Backends lists the accepted storage.backend values.
var Backends = []string{"file", "redis", "memory"}

// Codecs lists the accepted storage.codec values.
var Codecs = []string{"json", "yaml"}

// LogLevels lists the accepted log.level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Filters lists the accepted tui.default_filter values.
var Filters = []string{"all", "active", "completed"}
