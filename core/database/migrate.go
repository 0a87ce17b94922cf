package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/paybot/core/logger"
)

// migrationFile is an "<version>_<name>.up.sql" file in the migrations dir.
type migrationFile struct {
	version uint64
	name    string
}

// upMigrations lists the up migrations in dir ordered by version.
func upMigrations(dir string) []migrationFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(e.Name(), "_")
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, migrationFile{version: v, name: e.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files
}

// between returns the names of files with from < version <= to.
func between(files []migrationFile, from, to uint64) []string {
	var names []string
	for _, f := range files {
		if f.version > from && f.version <= to {
			names = append(names, f.name)
		}
	}
	return names
}

func fileNames(files []migrationFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names
}

func previewAttrs(names []string) []slog.Attr {
	preview, truncated := logger.SummarizeStrings(names, 6)
	attrs := []slog.Attr{slog.Int("files_total", len(names))}
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

// RunMigrations waits for the database and applies every pending up
// migration found in cfg.MigrationsDir.
func RunMigrations(ctx context.Context, cfg Config) error {
	dsn := cfg.URLString()
	if err := WaitForPostgres(ctx, dsn, 30*time.Second); err != nil {
		logger.Error(ctx, "db.migrate", "wait", slog.String("err", err.Error()))
		return fmt.Errorf("database not ready: %w", err)
	}

	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	files := upMigrations(dir)
	logger.Debug(ctx, "db.migrate", "resolve",
		append([]slog.Attr{slog.String("path", dir)}, previewAttrs(fileNames(files))...)...)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), dsn)
	if err != nil {
		logger.Error(ctx, "db.migrate", "init", slog.String("err", err.Error()))
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn(ctx, "db.migrate", "close",
				slog.Any("source_err", srcErr),
				slog.Any("db_err", dbErr),
			)
		}
	}()

	from, _, _ := m.Version()
	start := time.Now()
	upErr := m.Up()
	took := logger.RoundMS(time.Since(start))
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.Error(ctx, "db.migrate", "apply",
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	to, _, _ := m.Version()
	applied := between(files, uint64(from), uint64(to))
	if len(applied) > 0 {
		logger.Debug(ctx, "db.migrate", "apply", previewAttrs(applied)...)
	}
	logger.Info(ctx, "db.migrate", "summary",
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}
