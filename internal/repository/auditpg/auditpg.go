// Package auditpg persists completion records to Postgres for auditing
package auditpg

import (
	"context"
	"database/sql"
	"log"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

func (p PostgresRepo) Save(ctx context.Context, rec *model.CompletionRecord) error {
	query := `INSERT INTO completions (job_key, source_url, format, invocation_type, target_width, target_height, quality, download_ms, compress_ms, before_bytes, after_bytes, compress_ratio, image_url, err_msg, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())`

	// метрики могут отсутствовать если задача не дошла до результата
	var (
		downloadMS, compressMS  sql.NullInt64
		beforeBytes, afterBytes sql.NullInt64
		ratio                   sql.NullFloat64
		imageURL                sql.NullString
	)
	if rec.Result != nil {
		downloadMS = sql.NullInt64{Int64: rec.Result.DownloadLatencyMS, Valid: true}
		compressMS = sql.NullInt64{Int64: rec.Result.CompressLatencyMS, Valid: true}
		beforeBytes = sql.NullInt64{Int64: int64(rec.Result.OriginalByteLength), Valid: true}
		afterBytes = sql.NullInt64{Int64: int64(rec.Result.CompressedByteLength), Valid: true}
		ratio = sql.NullFloat64{Float64: rec.Result.CompressionRatio, Valid: true}
		imageURL = sql.NullString{String: rec.Result.ImageURL, Valid: true}
	}

	return p.DB.QueryRowContext(ctx, query,
		rec.Request.Key,
		rec.Request.Url,
		rec.Request.Format,
		rec.Request.InvocationType,
		rec.Request.Width,
		rec.Request.Height,
		rec.Request.Quality,
		downloadMS,
		compressMS,
		beforeBytes,
		afterBytes,
		ratio,
		imageURL,
		rec.Error,
	).Err()
}

func (p PostgresRepo) GetRecent(ctx context.Context, limit int) ([]model.CompletionRecord, error) {
	query := `SELECT job_key, source_url, format, invocation_type, target_width, target_height, quality, download_ms, compress_ms, before_bytes, after_bytes, compress_ratio, image_url, err_msg
	FROM completions
	ORDER BY created_at DESC
	LIMIT $1`

	rows, err := p.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	records := make([]model.CompletionRecord, 0, limit)
	for rows.Next() {
		var (
			rec                     model.CompletionRecord
			downloadMS, compressMS  sql.NullInt64
			beforeBytes, afterBytes sql.NullInt64
			ratio                   sql.NullFloat64
			imageURL                sql.NullString
		)

		if err := rows.Scan(
			&rec.Request.Key,
			&rec.Request.Url,
			&rec.Request.Format,
			&rec.Request.InvocationType,
			&rec.Request.Width,
			&rec.Request.Height,
			&rec.Request.Quality,
			&downloadMS,
			&compressMS,
			&beforeBytes,
			&afterBytes,
			&ratio,
			&imageURL,
			&rec.Error,
		); err != nil {
			return nil, err
		}

		if ratio.Valid {
			rec.Result = &model.TransformationResult{
				DownloadLatencyMS:    downloadMS.Int64,
				CompressLatencyMS:    compressMS.Int64,
				OriginalByteLength:   int(beforeBytes.Int64),
				CompressedByteLength: int(afterBytes.Int64),
				CompressionRatio:     ratio.Float64,
				OriginalMB:           model.SizeLabelMB(int(beforeBytes.Int64)),
				CompressedMB:         model.SizeLabelMB(int(afterBytes.Int64)),
				ImageURL:             imageURL.String,
				Key:                  rec.Request.Key,
			}
		}

		records = append(records, rec)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return records, nil
}
