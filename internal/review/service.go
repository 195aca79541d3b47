package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

type Service interface {
	List(ctx context.Context, cropID int64) (*ListResult, error)
	Get(ctx context.Context, id int64) (*Review, error)
	Create(ctx context.Context, in CreateInput) (*Review, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, cropID int64) (*ListResult, error) {
	if cropID <= 0 {
		return nil, &ValidationError{Field: "crop_id", Message: "is required"}
	}

	reviews, err := s.repo.ListByCrop(ctx, cropID)
	if err != nil {
		return nil, err
	}
	avg, err := s.repo.Average(ctx, cropID)
	if err != nil {
		return nil, err
	}

	return &ListResult{Reviews: reviews, AverageRating: avg, Count: len(reviews)}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Review, error) {
	uid, ok := utils.GetUserIDFromContext(ctx)
	if !ok || uid == 0 {
		return nil, ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateReview"),
		zap.Uint("buyer_id", uid),
	)

	in.Comment = strings.TrimSpace(in.Comment)
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, toValidationError(fieldErrs[0])
		}
		return nil, err
	}

	rv, err := s.repo.Insert(ctx, int64(uid), in)
	if err != nil {
		return nil, err
	}

	log.Info("review created", zap.Int64("id", rv.ID), zap.Int64("crop_id", rv.CropID))
	return rv, nil
}

// Delete removes a review written by the caller.
func (s *service) Delete(ctx context.Context, id int64) error {
	uid, ok := utils.GetUserIDFromContext(ctx)
	if !ok || uid == 0 {
		return ErrUnauthenticated
	}

	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rv.BuyerID != int64(uid) {
		return ErrForbidden
	}

	removed, err := s.repo.Delete(ctx, id, int64(uid))
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func toValidationError(fe validator.FieldError) *ValidationError {
	field := map[string]string{
		"CropID":  "crop_id",
		"Rating":  "rating",
		"Comment": "comment",
	}[fe.Field()]

	msg := "is invalid"
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min", "max":
		if fe.Field() == "Rating" {
			msg = "must be between 1 and 5"
		} else {
			msg = fmt.Sprintf("must be at most %s characters", fe.Param())
		}
	case "gt":
		msg = "must be a valid crop id"
	}
	return &ValidationError{Field: field, Message: msg}
}
