package config

import (
	"context"
	_ "embed"
	"strings"
	"time"
)

//go:embed broker_schema.cue
var brokerSchema string

const (
	DefaultAdminSocket      = "/run/gestureback/broker.sock"
	DefaultBrokerConfigPath = "/etc/gestureback/broker." + ConfigFileExt
)

// Broker is the configuration of the broker daemon.
type Broker struct {
	Address     string      `mapstructure:"address"`
	TLS         TLS         `mapstructure:"tls"`
	Admin       Admin       `mapstructure:"admin"`
	Permissions Permissions `mapstructure:"permissions"`
	Cgroup      Cgroup      `mapstructure:"cgroup"`
	Log         Log         `mapstructure:"log"`

	Source string `mapstructure:"-"`
}

// Admin configures the operator HTTP API.
type Admin struct {
	Socket string `mapstructure:"socket"`
}

// Permissions configures the permission registry.
type Permissions struct {
	AutoGrant      []string      `mapstructure:"auto_grant"`
	Deny           []string      `mapstructure:"deny"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// RequestRate is the minimum spacing between requests of one identity
	// once its burst is spent. Zero disables limiting.
	RequestRate  time.Duration `mapstructure:"request_rate"`
	RequestBurst int           `mapstructure:"request_burst"`
}

// Cgroup configures confinement of spawned processes.
type Cgroup struct {
	Root       string `mapstructure:"root"`
	MemoryHigh int64  `mapstructure:"memory_high"`
	Disabled   bool   `mapstructure:"disabled"`
}

// DefaultBroker returns the built-in broker configuration.
func DefaultBroker() Broker {
	return Broker{
		Address: DefaultBrokerAddress,
		Admin:   Admin{Socket: DefaultAdminSocket},
		Permissions: Permissions{
			RequestTimeout: 5 * time.Minute,
			RequestRate:    time.Second,
			RequestBurst:   5,
		},
		Cgroup: Cgroup{
			Root:       "/sys/fs/cgroup/" + AppName,
			MemoryHigh: 512 * 1024 * 1024,
		},
		Log: Log{Level: "info"},
	}
}

func brokerDefaults() map[string]any {
	d := DefaultBroker()
	return map[string]any{
		"address":                     d.Address,
		"tls.cert":                    "",
		"tls.key":                     "",
		"tls.ca":                      "",
		"admin.socket":                d.Admin.Socket,
		"permissions.auto_grant":      []string{},
		"permissions.deny":            []string{},
		"permissions.request_timeout": d.Permissions.RequestTimeout,
		"permissions.request_rate":    d.Permissions.RequestRate,
		"permissions.request_burst":   d.Permissions.RequestBurst,
		"cgroup.root":                 d.Cgroup.Root,
		"cgroup.memory_high":          d.Cgroup.MemoryHigh,
		"cgroup.disabled":             d.Cgroup.Disabled,
		"log.level":                   d.Log.Level,
	}
}

// LoadBroker reads the broker configuration. Without an explicit path it
// looks for DefaultBrokerConfigPath. Environment variables use the BROKER_
// prefix, e.g. BROKER_ADMIN_SOCKET.
func LoadBroker(ctx context.Context, opts LoadOptions) (*Broker, error) {
	var cfg Broker
	source, err := load(ctx, "BROKER", brokerSchema, brokerDefaults(), DefaultBrokerConfigPath, opts, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.Source = source
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints that hold regardless of where values came from.
func (c *Broker) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return invalid("address", "must not be empty")
	}
	if strings.TrimSpace(c.Admin.Socket) == "" {
		return invalid("admin.socket", "must not be empty")
	}
	if c.Permissions.RequestTimeout < 0 {
		return invalid("permissions.request_timeout", "must not be negative")
	}
	if c.Permissions.RequestRate < 0 {
		return invalid("permissions.request_rate", "must not be negative")
	}
	if c.Permissions.RequestBurst < 0 {
		return invalid("permissions.request_burst", "must not be negative")
	}
	for _, id := range c.Permissions.AutoGrant {
		if strings.TrimSpace(id) == "" {
			return invalid("permissions.auto_grant", "contains an empty identity")
		}
		for _, denied := range c.Permissions.Deny {
			if id == denied {
				return invalid("permissions", "identity %q is both auto-granted and denied", id)
			}
		}
	}
	if c.Cgroup.MemoryHigh < 0 {
		return invalid("cgroup.memory_high", "must not be negative")
	}
	return validateLevel("log.level", c.Log.Level)
}
