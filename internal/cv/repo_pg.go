package cv

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements CVRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const cvColumns = `id, user_id, file_path, is_main, file_name, uploaded_at`

// Create inserts a new CV record.
func (r *PGRepo) Create(ctx context.Context, rec UserCV) error {
	const query = `
INSERT INTO cv (id, user_id, file_path, is_main, file_name, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.OwnerID,
		rec.FilePath,
		rec.IsMain,
		rec.FileName,
		rec.UploadedAt,
	)
	return err
}

// Delete removes a CV record by id.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM cv WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a CV record by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (UserCV, error) {
	const query = `SELECT ` + cvColumns + ` FROM cv WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// GetByOwnerAndSlot fetches the record occupying (ownerID, isMain).
func (r *PGRepo) GetByOwnerAndSlot(ctx context.Context, ownerID string, isMain bool) (UserCV, error) {
	const query = `SELECT ` + cvColumns + ` FROM cv WHERE user_id = $1 AND is_main = $2`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, ownerID, isMain))
}

// GetByPath fetches the record referencing filePath.
func (r *PGRepo) GetByPath(ctx context.Context, filePath string) (UserCV, error) {
	const query = `SELECT ` + cvColumns + ` FROM cv WHERE file_path = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, filePath))
}

// ListByOwner lists an owner's records, main slot first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]UserCV, error) {
	const query = `
SELECT ` + cvColumns + `
FROM cv
WHERE user_id = $1
ORDER BY is_main DESC, uploaded_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserCV
	for rows.Next() {
		var rec UserCV
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.FilePath, &rec.IsMain, &rec.FileName, &rec.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByOwner counts an owner's records.
func (r *PGRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM cv WHERE user_id = $1`, ownerID).Scan(&count)
	return count, err
}

// Replace deletes the current slot occupant and inserts rec in one transaction.
func (r *PGRepo) Replace(ctx context.Context, rec UserCV) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cv WHERE user_id = $1 AND is_main = $2`,
		rec.OwnerID, rec.IsMain,
	); err != nil {
		return err
	}

	const insert = `
INSERT INTO cv (id, user_id, file_path, is_main, file_name, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insert,
		rec.ID, rec.OwnerID, rec.FilePath, rec.IsMain, rec.FileName, rec.UploadedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepo) scanOne(row *sql.Row) (UserCV, error) {
	var rec UserCV
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.FilePath, &rec.IsMain, &rec.FileName, &rec.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserCV{}, ErrNotFound
		}
		return UserCV{}, err
	}
	return rec, nil
}

var _ CVRepo = (*PGRepo)(nil)
