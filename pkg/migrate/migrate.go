package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

const (
	DefaultDir  = "pkg/migrate/migrations"
	embeddedDir = "migrations"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Embedded returns the migration set compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, embeddedDir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Source picks the embedded set when dir is empty and the directory otherwise.
func Source(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

func newProvider(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return goose.NewProvider(goose.DialectPostgres, db, fsys)
}

// Run applies up, down or status against a Postgres database. SQLite
// databases go through ApplySQLiteSchema instead.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, command string, logg *logger.Logger) error {
	p, err := newProvider(db, fsys)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := p.Up(ctx)
		logResults(ctx, logg, results...)
		return wrap(command, err)
	case "down":
		result, err := p.Down(ctx)
		if result != nil {
			logResults(ctx, logg, result)
		}
		return wrap(command, err)
	case "status":
		statuses, err := p.Status(ctx)
		if err != nil || logg == nil {
			return wrap(command, err)
		}
		for _, st := range statuses {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"version":    st.Source.Version,
				"file":       st.Source.Path,
				"state":      string(st.State),
				"applied_at": st.AppliedAt,
			}), "migration status")
		}
		return nil
	default:
		return fmt.Errorf("unsupported migration command %q", command)
	}
}

// MigrateToVersion moves the schema up or down until target is the current version.
func MigrateToVersion(ctx context.Context, db *sql.DB, fsys fs.FS, target string, logg *logger.Logger) error {
	version, err := parseVersion(target)
	if err != nil {
		return err
	}
	p, err := newProvider(db, fsys)
	if err != nil {
		return err
	}
	current, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current < version:
		results, err = p.UpTo(ctx, version)
	case current > version:
		results, err = p.DownTo(ctx, version)
	}
	logResults(ctx, logg, results...)
	return wrap(fmt.Sprintf("migrate to %d", version), err)
}

func parseVersion(raw string) (int64, error) {
	if raw == "" {
		return 0, errors.New("target version is required")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	return v, nil
}

func logResults(ctx context.Context, logg *logger.Logger, results ...*goose.MigrationResult) {
	if logg == nil {
		return
	}
	for _, r := range results {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":   r.Source.Version,
			"file":      r.Source.Path,
			"direction": r.Direction,
			"duration":  r.Duration.String(),
		}), "migration applied")
	}
}

func wrap(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("goose %s: %w", step, err)
}
