package chrome

import (
	"log/slog"
	"time"
)

// browserConfig holds internal configuration for a Browser.
type browserConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	logger       *slog.Logger
}

func defaultConfig() browserConfig {
	return browserConfig{
		timeout:  30 * time.Second,
		headless: "new",
		logger:   slog.New(slog.DiscardHandler),
	}
}

// Option configures a [Browser].
type Option func(*browserConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default standard locations are searched automatically.
func WithChromePath(path string) Option {
	return func(c *browserConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration of a single capture or print.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *browserConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *browserConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a compatible Chromium build when no executable
// path is configured. The binary is cached under ~/.cache/rod/browser.
func WithAutoDownload() Option {
	return func(c *browserConfig) {
		c.autoDownload = true
	}
}

// WithHeadless selects the headless mode passed to Chrome ("new" or
// "old"). Defaults to "new".
func WithHeadless(mode string) Option {
	return func(c *browserConfig) {
		if mode != "" {
			c.headless = mode
		}
	}
}

// WithLogger sets the logger that receives browser start-up and protocol
// error messages at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *browserConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
