package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mcmovie/internal/config"
	"mcmovie/internal/pack"
	"mcmovie/internal/services"
)

// Entry is the stored record for one pack name.
type Entry struct {
	Name          string
	Identity      pack.Identity
	ArchivePath   string
	ArchiveBytes  int64
	SourcePath    string
	SourceSeconds float64
	FrameCount    int
	Loop          bool
	RunID         string
	Builds        int
	CreatedAt     time.Time
	BuiltAt       time.Time
}

// Store manages pack identities backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the registry database under the state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrRegistry, "registry", "open", "ensure directories", err)
	}
	return OpenPath(cfg.RegistryPath())
}

// OpenPath opens the registry database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrRegistry, "registry", "open", dbPath, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrRegistry, "registry", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrRegistry, "registry", "open", "schema", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Reserve returns the identity the next build of name should carry. A known
// name keeps its UUIDs with the patch version bumped unless fresh is set.
// The second result reports whether the name was already known.
func (s *Store) Reserve(ctx context.Context, name string, fresh bool) (pack.Identity, bool, error) {
	existing, err := s.Get(ctx, name)
	if err != nil {
		return pack.Identity{}, false, err
	}
	if existing == nil {
		return pack.NewIdentity(), false, nil
	}
	if fresh {
		return pack.NewIdentity(), true, nil
	}
	return existing.Identity.Bump(), true, nil
}

// Record upserts the outcome of a build. Builders record the reserved
// identity before writing the archive, so every issued version is stored
// even when the write fails; ArchiveBytes stays 0 until CommitArchive.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return services.Wrap(services.ErrRegistry, "registry", "record", "empty pack name", nil)
	}
	builtAt := entry.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now()
	}
	timestamp := builtAt.UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO packs (
            name, header_uuid, module_uuid, version, archive_path, archive_bytes,
            source_path, source_seconds, frame_count, loop, run_id, builds, created_at, built_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            header_uuid = excluded.header_uuid,
            module_uuid = excluded.module_uuid,
            version = excluded.version,
            archive_path = excluded.archive_path,
            archive_bytes = excluded.archive_bytes,
            source_path = excluded.source_path,
            source_seconds = excluded.source_seconds,
            frame_count = excluded.frame_count,
            loop = excluded.loop,
            run_id = excluded.run_id,
            builds = packs.builds + 1,
            built_at = excluded.built_at`,
		name,
		entry.Identity.HeaderUUID,
		entry.Identity.ModuleUUID,
		entry.Identity.Version.String(),
		nullableString(entry.ArchivePath),
		entry.ArchiveBytes,
		nullableString(entry.SourcePath),
		entry.SourceSeconds,
		entry.FrameCount,
		boolToInt(entry.Loop),
		nullableString(entry.RunID),
		timestamp,
		timestamp,
	)
	if err != nil {
		return services.Wrap(services.ErrRegistry, "registry", "record", name, err)
	}
	return nil
}

// CommitArchive stores the size of the archive written for name's recorded
// build. It reports ErrRegistry when name has no entry.
func (s *Store) CommitArchive(ctx context.Context, name string, archiveBytes int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE packs SET archive_bytes = ? WHERE name = ?`, archiveBytes, name)
	if err != nil {
		return services.Wrap(services.ErrRegistry, "registry", "commit archive", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return services.Wrap(services.ErrRegistry, "registry", "commit archive", name, err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrRegistry, "registry", "commit archive", name+" not recorded", nil)
	}
	return nil
}

// Get fetches the entry for name, or nil when unknown.
func (s *Store) Get(ctx context.Context, name string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ?`, name)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrRegistry, "registry", "get", name, err)
	}
	return entry, nil
}

// List returns all entries, most recently built first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY built_at DESC, name ASC`)
	if err != nil {
		return nil, services.Wrap(services.ErrRegistry, "registry", "list", "", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrRegistry, "registry", "list", "scan", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrRegistry, "registry", "list", "", err)
	}
	return entries, nil
}

// Forget removes name so its next build starts with fresh UUIDs. It reports
// whether an entry was removed.
func (s *Store) Forget(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM packs WHERE name = ?`, name)
	if err != nil {
		return false, services.Wrap(services.ErrRegistry, "registry", "forget", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrRegistry, "registry", "forget", name, err)
	}
	return affected > 0, nil
}

const selectColumns = `SELECT name, header_uuid, module_uuid, version, archive_path, archive_bytes,
    source_path, source_seconds, frame_count, loop, run_id, builds, created_at, built_at FROM packs`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry                   Entry
		version                 string
		archivePath, sourcePath sql.NullString
		runID                   sql.NullString
		loop                    int
		createdAt, builtAt      string
	)
	err := row.Scan(
		&entry.Name,
		&entry.Identity.HeaderUUID,
		&entry.Identity.ModuleUUID,
		&version,
		&archivePath,
		&entry.ArchiveBytes,
		&sourcePath,
		&entry.SourceSeconds,
		&entry.FrameCount,
		&loop,
		&runID,
		&entry.Builds,
		&createdAt,
		&builtAt,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := pack.ParseVersion(version)
	if err != nil {
		return nil, err
	}
	entry.Identity.Version = parsed
	entry.ArchivePath = archivePath.String
	entry.SourcePath = sourcePath.String
	entry.RunID = runID.String
	entry.Loop = loop != 0
	entry.CreatedAt = parseTime(createdAt)
	entry.BuiltAt = parseTime(builtAt)
	return &entry, nil
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
