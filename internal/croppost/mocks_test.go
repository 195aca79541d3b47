package croppost

import (
	"context"

	"agrimarket-be/internal/cropimage"
	"agrimarket-be/internal/events"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, params ListParams) ([]CropPost, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]CropPost), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64, scope Scope) (*CropPost, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CropPost), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, farmerID int64, input CreateInput) (int64, error) {
	args := m.Called(ctx, farmerID, input)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id, farmerID int64, input UpdateInput) (bool, error) {
	args := m.Called(ctx, id, farmerID, input)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SetStatus(ctx context.Context, id int64, status Status, ownerID int64) (bool, error) {
	args := m.Called(ctx, id, status, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Districts(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) Statistics(ctx context.Context) (*Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Statistics), args.Error(1)
}

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Insert(ctx context.Context, listingID int64, payload []byte) (int64, error) {
	args := m.Called(ctx, listingID, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImageRepository) GetByListing(ctx context.Context, listingID int64) ([]cropimage.Image, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cropimage.Image), args.Error(1)
}

func (m *MockImageRepository) GetPayload(ctx context.Context, imageID, listingID int64) ([]byte, error) {
	args := m.Called(ctx, imageID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockImageRepository) DeleteByID(ctx context.Context, imageID, listingID int64) (bool, error) {
	args := m.Called(ctx, imageID, listingID)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}
