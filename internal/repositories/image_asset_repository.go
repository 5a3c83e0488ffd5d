package repositories

import (
	"context"
	"database/sql"

	"ospreyBack/internal/models"
)

type ImageAssetRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewImageAssetRepository(db *sql.DB, d Dialect) *ImageAssetRepository {
	return &ImageAssetRepository{DB: db, Dialect: d}
}

// Upsert stores an asset keyed by (job_id, filename), replacing url and labels
// when the pair already exists.
func (r *ImageAssetRepository) Upsert(ctx context.Context, a models.ImageAsset) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	update := `UPDATE image_assets SET url = ?, variant = ?, type = ?, bucket = ? WHERE job_id = ? AND filename = ?`
	res, err := tx.ExecContext(ctx, r.Dialect.Rebind(update), a.URL, a.Variant, a.Type, a.Bucket, a.JobID, a.Filename)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		insert := `INSERT INTO image_assets (id, job_id, filename, variant, type, url, bucket, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		_, err = tx.ExecContext(ctx, r.Dialect.Rebind(insert),
			a.ID, a.JobID, a.Filename, a.Variant, a.Type, a.URL, a.Bucket, a.CreatedAt.UTC())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ImageAssetRepository) ListByJob(ctx context.Context, jobID string) ([]models.ImageAsset, error) {
	query := `SELECT id, job_id, filename, variant, type, url, bucket, created_at
		FROM image_assets WHERE job_id = ? ORDER BY filename ASC`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ImageAsset{}
	for rows.Next() {
		var a models.ImageAsset
		if err := rows.Scan(&a.ID, &a.JobID, &a.Filename, &a.Variant, &a.Type, &a.URL, &a.Bucket, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
