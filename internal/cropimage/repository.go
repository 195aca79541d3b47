package cropimage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/metrics"

	"go.uber.org/zap"
)

// Repository stores binary listing images in the crop_post_images side table.
// Reads and deletes are always scoped by the owning listing id.
type Repository interface {
	Insert(ctx context.Context, listingID int64, payload []byte) (int64, error)
	GetByListing(ctx context.Context, listingID int64) ([]Image, error)
	GetPayload(ctx context.Context, imageID, listingID int64) ([]byte, error)
	DeleteByID(ctx context.Context, imageID, listingID int64) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, listingID int64, payload []byte) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "InsertImage"),
		zap.Int64("listing_id", listingID),
		zap.Int("size", len(payload)),
	)

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO crop_post_images (post_id, image) VALUES ($1, $2) RETURNING id`,
		listingID, payload,
	).Scan(&id)
	if err != nil {
		log.Error("failed to insert image", zap.Error(err))
		return 0, fmt.Errorf("insert image: %w", err)
	}

	metrics.ImagesStored.Inc()
	log.Debug("image stored", zap.Int64("image_id", id))
	return id, nil
}

func (r *repository) GetByListing(ctx context.Context, listingID int64) ([]Image, error) {
	metrics.ImageLookups.Inc()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, post_id, octet_length(image), created_at
		FROM crop_post_images
		WHERE post_id = $1
		ORDER BY id ASC
	`, listingID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query images",
			zap.Int64("listing_id", listingID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ListingID, &img.Size, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate images: %w", err)
	}

	return images, nil
}

func (r *repository) GetPayload(ctx context.Context, imageID, listingID int64) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT image FROM crop_post_images WHERE id = $1 AND post_id = $2`,
		imageID, listingID,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load image payload",
			zap.Int64("image_id", imageID),
			zap.Int64("listing_id", listingID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("load image: %w", err)
	}

	return payload, nil
}

// DeleteByID reports false when no image with that id belongs to the listing.
func (r *repository) DeleteByID(ctx context.Context, imageID, listingID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM crop_post_images WHERE id = $1 AND post_id = $2`,
		imageID, listingID,
	)
	if err != nil {
		return false, fmt.Errorf("delete image: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete image rows affected: %w", err)
	}

	logger.FromCtx(ctx).Debug("image delete",
		zap.Int64("image_id", imageID),
		zap.Int64("listing_id", listingID),
		zap.Int64("affected", affected),
	)
	return affected > 0, nil
}
