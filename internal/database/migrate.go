package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"welearn/internal/logger"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Migrations holds the schema migrations shipped with the binary.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Migrator applies numbered up/down SQL files read through a golang-migrate
// source driver and records applied versions in schema_migrations.
type Migrator struct {
	db  *sqlx.DB
	src source.Driver
	log *zap.Logger
}

// NewMigrator reads migrations from dir inside fsys, e.g. (Migrations, "migrations").
func NewMigrator(db *sqlx.DB, fsys fs.FS, dir string) (*Migrator, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	return &Migrator{db: db, src: src, log: logger.Get()}, nil
}

func (m *Migrator) Close() error {
	return m.src.Close()
}

// Up applies every migration newer than the current version and returns
// how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	current, err := m.Version(ctx)
	if err != nil {
		return 0, err
	}

	versions, err := m.versions()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, v := range versions {
		if v <= current {
			continue
		}
		r, name, err := m.src.ReadUp(v)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %d: %w", v, err)
		}
		if err := m.run(ctx, r); err != nil {
			return applied, fmt.Errorf("migration %d_%s failed: %w", v, name, err)
		}
		if _, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (:1, :2)`, int64(v), time.Now()); err != nil {
			return applied, fmt.Errorf("failed to record migration %d: %w", v, err)
		}
		m.log.Info("Applied migration", zap.Uint("version", v), zap.String("name", name))
		applied++
	}
	return applied, nil
}

// Down reverts up to steps applied migrations, newest first. steps <= 0
// reverts all of them.
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	var applied []int64
	if err := m.db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations ORDER BY version DESC`); err != nil {
		return 0, fmt.Errorf("failed to list applied migrations: %w", err)
	}

	reverted := 0
	for _, v := range applied {
		if steps > 0 && reverted == steps {
			break
		}
		r, name, err := m.src.ReadDown(uint(v))
		if err != nil {
			return reverted, fmt.Errorf("failed to read down migration %d: %w", v, err)
		}
		if err := m.run(ctx, r); err != nil {
			return reverted, fmt.Errorf("down migration %d_%s failed: %w", v, name, err)
		}
		if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = :1`, v); err != nil {
			return reverted, fmt.Errorf("failed to unrecord migration %d: %w", v, err)
		}
		m.log.Info("Reverted migration", zap.Int64("version", v), zap.String("name", name))
		reverted++
	}
	return reverted, nil
}

// Version returns the newest applied version, 0 when none.
func (m *Migrator) Version(ctx context.Context) (uint, error) {
	var v int64
	if err := m.db.GetContext(ctx, &v, `SELECT NVL(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return uint(v), nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	var n int
	if err := m.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`); err != nil {
		return fmt.Errorf("failed to check schema_migrations: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err := m.db.ExecContext(ctx, `CREATE TABLE schema_migrations (version NUMBER(19) PRIMARY KEY, applied_at TIMESTAMP NOT NULL)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) versions() ([]uint, error) {
	var out []uint
	v, err := m.src.First()
	for err == nil {
		out = append(out, v)
		v, err = m.src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	return out, nil
}

// run executes each ;-terminated statement of r. Oracle rejects a
// trailing semicolon inside a single statement.
func (m *Migrator) run(ctx context.Context, r io.ReadCloser) error {
	defer r.Close()
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	for _, stmt := range SplitStatements(string(body)) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SplitStatements splits a script on semicolons and drops empty statements
// and full-line "--" comments.
func SplitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
