package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/otebot/otebot-api/internal/domain"
	"github.com/otebot/otebot-api/internal/infra/logging"
)

// SQLiteRepositoryConfig holds configuration for the SQLite admin repository.
type SQLiteRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"ADMIN_DATABASE_PATH" default:"var/storage/otebot.db"`
}

// SQLiteRepository implements Repository using SQLite as the storage backend.
// It allows a deployment to hold more than one administrator credential.
type SQLiteRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepositoryFactory creates a factory function that returns a new
// SQLiteRepository. The factory function implements the RepositoryFactory type.
func SQLiteRepositoryFactory(cfg SQLiteRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteRepository(cfg)
	}
}

// NewSQLiteRepository creates a new SQLiteRepository with the given configuration.
// It initializes the database connection and creates the schema if needed.
// Returns an error if database connection or initialization fails.
func NewSQLiteRepository(cfg SQLiteRepositoryConfig) (*SQLiteRepository, error) {
	log := logging.GetLogger("repo.admin.sqlite_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) (err error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS admins (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT    UNIQUE NOT NULL,
			password_hash BLOB    NOT NULL,
			created_at    INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// SeedAdmin inserts or replaces the credential for the given email.
// Used at startup to provision the env-configured administrator.
func (r *SQLiteRepository) SeedAdmin(ctx context.Context, email string, passwordHash []byte) (err error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admins (email, password_hash, created_at) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET password_hash = excluded.password_hash
	`,
		email,
		passwordHash,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	return nil
}

// GetAdmin implements Repository.GetAdmin using SQLite.
func (r *SQLiteRepository) GetAdmin(ctx context.Context, email string) (*domain.AdminCredential, bool, error) {
	var credential domain.AdminCredential

	err := r.db.QueryRowContext(ctx,
		"SELECT email, password_hash FROM admins WHERE email = ?",
		email,
	).Scan(&credential.Email, &credential.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrAdminNotFound, err)
		}

		return nil, false, fmt.Errorf("query admin: %w", err)
	}

	return &credential, true, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
