package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// QueryByTypeSubstring returns rows whose filetype contains keyword,
// case-sensitively, ordered by filename. The keyword is bound as a
// parameter, never spliced into SQL. An empty keyword matches every row.
func (s *Store) QueryByTypeSubstring(ctx context.Context, keyword string) ([]Match, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var rows []Match
	err := s.db.SelectContext(ctx, &rows,
		`SELECT filehash, filename, filetype, filesize
		FROM file_hashes
		WHERE instr(filetype, ?) > 0
		ORDER BY filename`, keyword)
	if err != nil {
		return nil, fmt.Errorf("query type %q: %w", keyword, err)
	}
	return rows, nil
}

// Lookup returns the row for hash, or ErrNotFound.
func (s *Store) Lookup(ctx context.Context, hash string) (*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var e Entry
	err := s.db.GetContext(ctx, &e,
		`SELECT filehash, filename, filetype, filesize FROM file_hashes WHERE filehash = ?`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", hash, err)
	}
	return &e, nil
}

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM file_hashes`); err != nil {
		return 0, fmt.Errorf("count index: %w", err)
	}
	return n, nil
}

// forgetChunk bounds the number of bound parameters per DELETE.
const forgetChunk = 500

// ForgetPaths deletes rows whose filename is one of paths and returns how
// many were removed. Traversal never calls this; it exists for callers
// that move or delete indexed files and opt in to keeping the index in
// step.
func (s *Store) ForgetPaths(ctx context.Context, paths []string) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, nil
	}

	var removed int64
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for start := 0; start < len(paths); start += forgetChunk {
			chunk := paths[start:min(start+forgetChunk, len(paths))]
			query, args, err := sqlx.In(`DELETE FROM file_hashes WHERE filename IN (?)`, chunk)
			if err != nil {
				return fmt.Errorf("build delete: %w", err)
			}
			res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
			if err != nil {
				return fmt.Errorf("delete rows: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("forgot paths", "requested", len(paths), "removed", removed)
	return removed, nil
}

// RelocatePath rewrites the filename of the row pointing at from.
// A path that is not indexed is not an error.
func (s *Store) RelocatePath(ctx context.Context, from, to string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `UPDATE file_hashes SET filename = ? WHERE filename = ?`, to, from)
	if err != nil {
		return fmt.Errorf("relocate %s: %w", from, err)
	}
	return nil
}
