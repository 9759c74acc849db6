package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jamesainslie/sift/pkg/sift/types"
)

const insertIgnore = `INSERT INTO file_hashes (filehash, filename, filetype, filesize)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(filehash) DO NOTHING`

const insertPlain = `INSERT INTO file_hashes (filehash, filename, filetype, filesize)
	VALUES (?, ?, ?, ?)`

const selectFilename = `SELECT filename FROM file_hashes WHERE filehash = ?`

// BulkCreate inserts records in one transaction. A record whose hash is
// already present, in the table or earlier in the batch, is skipped and
// reported as a collision; the batch continues. Any other failure rolls
// the whole batch back.
func (s *Store) BulkCreate(ctx context.Context, records []types.FileRecord) (*WriteReport, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	report := &WriteReport{Mode: ModeBootstrap, Attempted: len(records)}

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, insertIgnore)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			e := entryFromRecord(rec)
			res, err := stmt.ExecContext(ctx, e.Hash, e.Filename, e.Filetype, e.Filesize)
			if err != nil {
				return fmt.Errorf("insert %s: %w", rec.Path, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("insert %s: %w", rec.Path, err)
			}
			if n == 1 {
				report.Inserted++
				continue
			}

			existing, err := filenameFor(ctx, tx, rec.Hash)
			if err != nil {
				return err
			}
			s.collide(report, rec, existing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk create committed",
		"attempted", report.Attempted,
		"inserted", report.Inserted,
		"collisions", len(report.Collisions),
	)
	return report, nil
}

// IncrementalUpdate looks up each record's hash and inserts only unseen
// hashes, in one transaction. Records whose hash is present are reported
// as collisions without attempting the insert.
func (s *Store) IncrementalUpdate(ctx context.Context, records []types.FileRecord) (*WriteReport, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	report := &WriteReport{Mode: ModeIncremental, Attempted: len(records)}

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, insertPlain)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			existing, err := filenameFor(ctx, tx, rec.Hash)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			if err == nil {
				s.collide(report, rec, existing)
				continue
			}

			e := entryFromRecord(rec)
			if _, err := stmt.ExecContext(ctx, e.Hash, e.Filename, e.Filetype, e.Filesize); err != nil {
				return fmt.Errorf("insert %s: %w", rec.Path, err)
			}
			report.Inserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("incremental update committed",
		"attempted", report.Attempted,
		"inserted", report.Inserted,
		"already_indexed", len(report.Collisions),
	)
	return report, nil
}

// Reconcile creates the schema if needed, then bulk-creates into an empty
// index or incrementally updates a populated one.
func (s *Store) Reconcile(ctx context.Context, records []types.FileRecord) (*WriteReport, error) {
	if err := s.InitializeSchema(ctx); err != nil {
		return nil, err
	}

	empty, err := s.IsEmpty(ctx)
	if err != nil {
		return nil, err
	}
	if empty {
		return s.BulkCreate(ctx, records)
	}
	return s.IncrementalUpdate(ctx, records)
}

func (s *Store) collide(report *WriteReport, rec types.FileRecord, existing string) {
	c := Collision{Hash: rec.Hash, Path: rec.Path, Existing: existing}
	report.Collisions = append(report.Collisions, c)
	s.logger.Info("already indexed, skipping", "path", rec.Path, "existing", existing, "hash", rec.Hash)
}

func filenameFor(ctx context.Context, tx *sqlx.Tx, hash string) (string, error) {
	var name sql.NullString
	err := tx.GetContext(ctx, &name, selectFilename, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", hash, err)
	}
	return name.String, nil
}
