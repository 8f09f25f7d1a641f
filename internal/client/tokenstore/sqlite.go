package tokenstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/resumecli/internal/client/migrations"
	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/common"
	"github.com/dmitrijs2005/resumecli/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the credential in a local SQLite file. One file is one
// profile: runs sharing the file share the session.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open token db: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Save replaces the stored credential atomically.
func (s *SQLiteStore) Save(ctx context.Context, cred models.Credential) error {
	tokenType := cred.TokenType
	if tokenType == "" {
		tokenType = common.DefaultTokenType
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadataRepo{db: tx}
		if err := repo.set(ctx, keyAccessToken, []byte(cred.AccessToken)); err != nil {
			return err
		}
		return repo.set(ctx, keyTokenType, []byte(tokenType))
	})
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Credential, bool, error) {
	repo := metadataRepo{db: s.db}

	token, err := repo.get(ctx, keyAccessToken)
	if err != nil {
		return models.Credential{}, false, err
	}
	if len(token) == 0 {
		return models.Credential{}, false, nil
	}

	tokenType, err := repo.get(ctx, keyTokenType)
	if err != nil {
		return models.Credential{}, false, err
	}
	if len(tokenType) == 0 {
		tokenType = []byte(common.DefaultTokenType)
	}

	return models.Credential{AccessToken: string(token), TokenType: string(tokenType)}, true, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadataRepo{db: tx}.delete(ctx, keyAccessToken, keyTokenType)
	})
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
