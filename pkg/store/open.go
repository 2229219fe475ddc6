package store

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
	BackendNull   = "null"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMongo, BackendMemory, BackendNull}

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend" yaml:"backend"`
	// Path is the directory of the file backend or the database file of the
	// sqlite backend.
	Path string `toml:"path" yaml:"path"`

	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`

	URI        string `toml:"uri" yaml:"uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`

	// Namespace scopes every key, see ScopedKeyer.
	Namespace string `toml:"namespace" yaml:"namespace"`
	// TTL expires snapshots; zero keeps them forever.
	TTL time.Duration `toml:"ttl" yaml:"ttl"`
}

// Open constructs the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Path)
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	case BackendMongo:
		return NewMongoStore(ctx, MongoConfig{URI: cfg.URI, Database: cfg.Database, Collection: cfg.Collection})
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendNull:
		return NewNullStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// Keyer returns the keyer for cfg's namespace.
func (cfg Config) Keyer() Keyer {
	return NewScopedKeyer(NewDefaultKeyer(), cfg.Namespace)
}
