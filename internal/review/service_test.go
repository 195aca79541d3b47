package review

import (
	"context"
	"testing"

	"agrimarket-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListByCrop(ctx context.Context, cropID int64) ([]Review, error) {
	args := m.Called(ctx, cropID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Review), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, buyerID int64, in CreateInput) (*Review, error) {
	args := m.Called(ctx, buyerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id, buyerID int64) (bool, error) {
	args := m.Called(ctx, id, buyerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Average(ctx context.Context, cropID int64) (float64, error) {
	args := m.Called(ctx, cropID)
	return args.Get(0).(float64), args.Error(1)
}

func buyerCtx(id uint) context.Context {
	return utils.SetUserContext(context.Background(), id, "buyer@example.com", utils.RoleBuyer)
}

func TestService_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		ctx := context.Background()

		repo.On("ListByCrop", ctx, int64(7)).Return([]Review{{ID: 1, Rating: 4}, {ID: 2, Rating: 5}}, nil)
		repo.On("Average", ctx, int64(7)).Return(4.5, nil)

		res, err := svc.List(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Count)
		assert.Equal(t, 4.5, res.AverageRating)
		repo.AssertExpectations(t)
	})

	t.Run("Missing crop id", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.List(context.Background(), 0)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "crop_id", verr.Field)
	})
}

func TestService_Create(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Create(context.Background(), CreateInput{CropID: 1, Rating: 5, Comment: "x"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("Rating out of range", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.Create(buyerCtx(3), CreateInput{CropID: 1, Rating: 6, Comment: "too good"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "rating", verr.Field)
		assert.Equal(t, "must be between 1 and 5", verr.Message)
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Blank comment", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Create(buyerCtx(3), CreateInput{CropID: 1, Rating: 3, Comment: "   "})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "comment", verr.Field)
		assert.Equal(t, "is required", verr.Message)
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		ctx := buyerCtx(3)
		in := CreateInput{CropID: 7, Rating: 5, Comment: "fresh"}

		repo.On("Insert", ctx, int64(3), in).Return(&Review{ID: 11, CropID: 7, BuyerID: 3, Rating: 5}, nil)

		rv, err := svc.Create(ctx, CreateInput{CropID: 7, Rating: 5, Comment: "  fresh "})
		require.NoError(t, err)
		assert.Equal(t, int64(11), rv.ID)
		repo.AssertExpectations(t)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("Not the author", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		ctx := buyerCtx(9)

		repo.On("GetByID", ctx, int64(1)).Return(&Review{ID: 1, BuyerID: 3}, nil)

		err := svc.Delete(ctx, 1)
		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		ctx := buyerCtx(3)

		repo.On("GetByID", ctx, int64(1)).Return(nil, ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, 1), ErrNotFound)
	})

	t.Run("Author", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		ctx := buyerCtx(3)

		repo.On("GetByID", ctx, int64(1)).Return(&Review{ID: 1, BuyerID: 3}, nil)
		repo.On("Delete", ctx, int64(1), int64(3)).Return(true, nil)

		assert.NoError(t, svc.Delete(ctx, 1))
		repo.AssertExpectations(t)
	})

	t.Run("Anonymous", func(t *testing.T) {
		assert.ErrorIs(t, NewService(new(MockRepository)).Delete(context.Background(), 1), ErrUnauthenticated)
	})
}
