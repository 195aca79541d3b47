package httpapi

import (
	"context"

	"agrimarket-be/internal/croppost"
	"agrimarket-be/internal/pagination"
	"agrimarket-be/internal/review"
	"agrimarket-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) List(ctx context.Context, filter croppost.Filter, sort croppost.Sort, page pagination.Page) (*croppost.ListResult, error) {
	args := m.Called(ctx, filter, sort, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.ListResult), args.Error(1)
}

func (m *MockPostService) ListActive(ctx context.Context, filter croppost.Filter, sort croppost.Sort, page pagination.Page) (*croppost.ListResult, error) {
	args := m.Called(ctx, filter, sort, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.ListResult), args.Error(1)
}

func (m *MockPostService) ListBulk(ctx context.Context, filter croppost.Filter, page pagination.Page) (*croppost.BulkListResult, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.BulkListResult), args.Error(1)
}

func (m *MockPostService) ListMine(ctx context.Context, page pagination.Page) (*croppost.ListResult, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.ListResult), args.Error(1)
}

func (m *MockPostService) Search(ctx context.Context, term string, filter croppost.Filter) (*croppost.SearchResult, error) {
	args := m.Called(ctx, term, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.SearchResult), args.Error(1)
}

func (m *MockPostService) Get(ctx context.Context, id int64) (*croppost.View, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.View), args.Error(1)
}

func (m *MockPostService) GetActive(ctx context.Context, id int64) (*croppost.View, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.View), args.Error(1)
}

func (m *MockPostService) Create(ctx context.Context, input croppost.CreateInput, uploads []croppost.Upload) (*croppost.View, error) {
	args := m.Called(ctx, input, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.View), args.Error(1)
}

func (m *MockPostService) Update(ctx context.Context, id int64, input croppost.UpdateInput, uploads []croppost.Upload) (*croppost.View, error) {
	args := m.Called(ctx, id, input, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.View), args.Error(1)
}

func (m *MockPostService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostService) ChangeStatus(ctx context.Context, id int64, status croppost.Status) (*croppost.View, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.View), args.Error(1)
}

func (m *MockPostService) DeleteImage(ctx context.Context, listingID, imageID int64) error {
	return m.Called(ctx, listingID, imageID).Error(0)
}

func (m *MockPostService) ImagePayload(ctx context.Context, listingID, imageID int64) ([]byte, error) {
	args := m.Called(ctx, listingID, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPostService) Districts(ctx context.Context) (*croppost.Districts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.Districts), args.Error(1)
}

func (m *MockPostService) Statistics(ctx context.Context) (*croppost.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*croppost.Statistics), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, cropID int64) (*review.ListResult, error) {
	args := m.Called(ctx, cropID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.ListResult), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, id int64) (*review.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, in review.CreateInput) (*review.Review, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, user.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(context.Context) error { return p.err }
