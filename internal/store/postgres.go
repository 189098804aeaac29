package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/certen/kernel-validator/internal/kernel/epoch"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// AuditStore mirrors committed epoch history into Postgres for ad-hoc SQL
// querying and audit tooling — a secondary, queryable copy of the
// authoritative KV-backed EpochStore, not a replacement for it. Adapted
// from the teacher's pkg/database.Client: functional-options
// construction, pooled *sql.DB, embedded-migration runner, and a
// schema_migrations tracking table.
type AuditStore struct {
	db     *sql.DB
	logger *log.Logger
}

// AuditStoreOption configures an AuditStore.
type AuditStoreOption func(*AuditStore)

// WithLogger sets a custom logger for the store.
func WithLogger(logger *log.Logger) AuditStoreOption {
	return func(s *AuditStore) {
		s.logger = logger
	}
}

// AuditStoreConfig carries the connection-pool tuning knobs an AuditStore
// needs; it deliberately mirrors internal/config.Config's postgres_*
// fields rather than importing that package, to keep store decoupled
// from config.
type AuditStoreConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewAuditStore opens a pooled Postgres connection and verifies it with a
// ping before returning.
func NewAuditStore(ctx context.Context, cfg AuditStoreConfig, opts ...AuditStoreOption) (*AuditStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("store: postgres URL cannot be empty")
	}

	s := &AuditStore{
		logger: log.New(log.Writer(), "[AuditStore] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}

	s.db = db
	return s, nil
}

// Close closes the underlying connection pool.
func (s *AuditStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HealthStatus reports pool and connectivity health, matching the shape
// expected by the HTTP layer's /healthz endpoint.
type HealthStatus struct {
	Healthy            bool   `json:"healthy"`
	Error              string `json:"error,omitempty"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	MaxOpenConnections int    `json:"max_open_connections"`
}

// Health pings the database and reports pool statistics.
func (s *AuditStore) Health(ctx context.Context) HealthStatus {
	if err := s.db.PingContext(ctx); err != nil {
		return HealthStatus{Healthy: false, Error: err.Error()}
	}
	stats := s.db.Stats()
	return HealthStatus{
		Healthy:            true,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		MaxOpenConnections: stats.MaxOpenConnections,
	}
}

// migration is a single embedded SQL migration file.
type migration struct {
	Version string
	SQL     string
}

func (s *AuditStore) loadMigrations() ([]migration, error) {
	var migrations []migration
	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		migrations = append(migrations, migration{
			Version: strings.TrimSuffix(d.Name(), ".sql"),
			SQL:      string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

func (s *AuditStore) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// MigrateUp applies every embedded migration not already recorded in
// schema_migrations, each inside its own transaction.
func (s *AuditStore) MigrateUp(ctx context.Context) error {
	migrations, err := s.loadMigrations()
	if err != nil {
		return fmt.Errorf("store: load migrations: %w", err)
	}
	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("store: applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		s.logger.Printf("applying migration %s", m.Version)
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("store: begin migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: apply migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("store: commit migration %s: %w", m.Version, err)
		}
	}
	return nil
}

// RecordEpoch mirrors a committed epoch into epoch_history for SQL
// querying. It is best-effort from the kernel's perspective — the
// KV-backed EpochStore is the source of truth; a failure here should be
// logged, not treated as a failed epoch commit.
func (s *AuditStore) RecordEpoch(ctx context.Context, state epoch.State) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO epoch_history
			(epoch_number, state_root, previous_root, validator_set_root,
			 impact_pool_root, bond_pool_root, kernel_hash, entropy_metric_scaled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (epoch_number) DO NOTHING`,
		state.EpochNumber,
		digestHex(state.StateRoot),
		digestHex(state.PreviousRoot),
		digestHex(state.ValidatorSetRoot),
		digestHex(state.ImpactPoolRoot),
		digestHex(state.BondPoolRoot),
		digestHex(state.KernelHash),
		state.EntropyMetricScaled,
	)
	if err != nil {
		return fmt.Errorf("store: record epoch %d: %w", state.EpochNumber, err)
	}
	return nil
}

func digestHex(d [32]byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range d {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0xF]
	}
	return string(out)
}
