package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrimarket-be/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres foreign_key_violation.
const fkViolation = pq.ErrorCode("23503")

type Repository interface {
	ListByCrop(ctx context.Context, cropID int64) ([]Review, error)
	GetByID(ctx context.Context, id int64) (*Review, error)
	Insert(ctx context.Context, buyerID int64, in CreateInput) (*Review, error)
	Delete(ctx context.Context, id, buyerID int64) (bool, error)
	Average(ctx context.Context, cropID int64) (float64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectReview = `
	SELECT cr.id, cr.crop_id, cr.buyer_id, COALESCE(u.full_name, 'Anonymous') AS buyer_name,
	       cr.rating, cr.comment, cr.created_at
	FROM crop_reviews cr
	LEFT JOIN users u ON u.id = cr.buyer_id
`

func (r *repository) ListByCrop(ctx context.Context, cropID int64) ([]Review, error) {
	reviews := []Review{}
	err := r.db.SelectContext(ctx, &reviews,
		selectReview+`WHERE cr.crop_id = $1 ORDER BY cr.created_at DESC, cr.id DESC`, cropID)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list reviews",
			zap.Int64("crop_id", cropID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	var rv Review
	err := r.db.GetContext(ctx, &rv, selectReview+`WHERE cr.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &rv, nil
}

func (r *repository) Insert(ctx context.Context, buyerID int64, in CreateInput) (*Review, error) {
	const q = `
		INSERT INTO crop_reviews (crop_id, buyer_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	rv := Review{CropID: in.CropID, BuyerID: buyerID, Rating: in.Rating, Comment: in.Comment}
	err := r.db.QueryRowxContext(ctx, q, in.CropID, buyerID, in.Rating, in.Comment).
		Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == fkViolation {
			return nil, ErrCropNotFound
		}
		logger.FromCtx(ctx).Error("db: failed to insert review",
			zap.Int64("crop_id", in.CropID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return &rv, nil
}

func (r *repository) Delete(ctx context.Context, id, buyerID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM crop_reviews WHERE id = $1 AND buyer_id = $2`, id, buyerID)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	return n > 0, nil
}

func (r *repository) Average(ctx context.Context, cropID int64) (float64, error) {
	var avg float64
	err := r.db.GetContext(ctx, &avg,
		`SELECT COALESCE(AVG(rating)::numeric(3,2), 0) FROM crop_reviews WHERE crop_id = $1`, cropID)
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}
