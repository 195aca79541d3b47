package croppost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"agrimarket-be/internal/cropimage"
	"agrimarket-be/internal/events"
	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/metrics"
	"agrimarket-be/internal/pagination"
	"agrimarket-be/internal/utils"

	"go.uber.org/zap"
)

const (
	searchMinLength = 2
	searchLimit     = 50
)

// Upload is one image file received with a create or update request.
type Upload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

type Service interface {
	List(ctx context.Context, filter Filter, sort Sort, page pagination.Page) (*ListResult, error)
	ListActive(ctx context.Context, filter Filter, sort Sort, page pagination.Page) (*ListResult, error)
	ListBulk(ctx context.Context, filter Filter, page pagination.Page) (*BulkListResult, error)
	ListMine(ctx context.Context, page pagination.Page) (*ListResult, error)
	Search(ctx context.Context, term string, filter Filter) (*SearchResult, error)
	Get(ctx context.Context, id int64) (*View, error)
	GetActive(ctx context.Context, id int64) (*View, error)
	Create(ctx context.Context, input CreateInput, uploads []Upload) (*View, error)
	Update(ctx context.Context, id int64, input UpdateInput, uploads []Upload) (*View, error)
	Delete(ctx context.Context, id int64) error
	ChangeStatus(ctx context.Context, id int64, status Status) (*View, error)
	DeleteImage(ctx context.Context, listingID, imageID int64) error
	ImagePayload(ctx context.Context, listingID, imageID int64) ([]byte, error)
	Districts(ctx context.Context) (*Districts, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type service struct {
	repo      Repository
	images    cropimage.Repository
	assembler *Assembler
	publisher events.Publisher
}

func NewService(repo Repository, images cropimage.Repository, assembler *Assembler, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{
		repo:      repo,
		images:    images,
		assembler: assembler,
		publisher: publisher,
	}
}

func actor(ctx context.Context) (int64, string, error) {
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok || id == 0 {
		return 0, "", ErrUnauthenticated
	}
	return int64(id), utils.GetUserRoleFromContext(ctx), nil
}

/* ---------- READS ---------- */

func (s *service) List(ctx context.Context, filter Filter, sort Sort, page pagination.Page) (*ListResult, error) {
	return s.list(ctx, ListParams{Filter: filter, Scope: ScopeVisible, Sort: sort, Page: page})
}

func (s *service) ListActive(ctx context.Context, filter Filter, sort Sort, page pagination.Page) (*ListResult, error) {
	return s.list(ctx, ListParams{Filter: filter, Scope: ScopeActive, Sort: sort, Page: page})
}

func (s *service) ListMine(ctx context.Context, page pagination.Page) (*ListResult, error) {
	uid, _, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, ListParams{Scope: ScopeVisible, Page: page, FarmerID: uid})
}

func (s *service) list(ctx context.Context, params ListParams) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	params.Page = pagination.New(params.Page.Number, params.Page.Limit)

	log.Debug("list crop posts requested",
		zap.Int("page", params.Page.Number),
		zap.Int("limit", params.Page.Limit),
		zap.String("scope", params.Scope.String()),
		zap.Any("filters", params.Filter.Applied()),
	)

	posts, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	views, err := s.assembler.Assemble(ctx, posts)
	if err != nil {
		log.Error("failed to assemble crop posts", zap.Error(err))
		return nil, err
	}

	return &ListResult{
		Posts:          views,
		Pagination:     pagination.NewMeta(params.Page, total),
		FiltersApplied: params.Filter.Applied(),
	}, nil
}

func (s *service) ListBulk(ctx context.Context, filter Filter, page pagination.Page) (*BulkListResult, error) {
	filter.BulkOnly = true

	res, err := s.list(ctx, ListParams{Filter: filter, Scope: ScopeActive, Page: page})
	if err != nil {
		return nil, err
	}

	bulk := make([]*BulkView, 0, len(res.Posts))
	for _, v := range res.Posts {
		if bv := NewBulkView(v); bv != nil {
			bulk = append(bulk, bv)
		}
	}

	return &BulkListResult{
		Posts:          bulk,
		Pagination:     res.Pagination,
		FiltersApplied: res.FiltersApplied,
	}, nil
}

func (s *service) Search(ctx context.Context, term string, filter Filter) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < searchMinLength {
		return nil, NewValidationError("q", fmt.Sprintf("must be at least %d characters", searchMinLength))
	}
	filter.CropName = term

	res, err := s.list(ctx, ListParams{
		Filter: filter,
		Scope:  ScopeActive,
		Page:   pagination.New(1, searchLimit),
	})
	if err != nil {
		return nil, err
	}

	return &SearchResult{Posts: res.Posts, Total: res.Pagination.TotalItems}, nil
}

// Get returns a listing unless it was deleted. Admins also see deleted ones.
func (s *service) Get(ctx context.Context, id int64) (*View, error) {
	scope := ScopeVisible
	if utils.IsAdmin(ctx) {
		scope = ScopeAny
	}
	return s.view(ctx, id, scope)
}

func (s *service) GetActive(ctx context.Context, id int64) (*View, error) {
	return s.view(ctx, id, ScopeActive)
}

func (s *service) view(ctx context.Context, id int64, scope Scope) (*View, error) {
	post, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return s.assembler.AssembleOne(ctx, *post)
}

func (s *service) ImagePayload(ctx context.Context, listingID, imageID int64) ([]byte, error) {
	data, err := s.images.GetPayload(ctx, imageID, listingID)
	if errors.Is(err, cropimage.ErrImageNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	metrics.ImagesServed.Inc()
	metrics.ImageBytesServed.Add(uint64(len(data)))
	return data, nil
}

func (s *service) Districts(ctx context.Context) (*Districts, error) {
	active, err := s.repo.Districts(ctx)
	if err != nil {
		return nil, err
	}
	return &Districts{Active: active, All: AllDistricts}, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

/* ---------- WRITES ---------- */

func (s *service) Create(ctx context.Context, input CreateInput, uploads []Upload) (*View, error) {
	uid, role, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if role != utils.RoleFarmer {
		return nil, ErrForbidden
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.Int64("farmer_id", uid),
	)

	if err := validateCreate(input); err != nil {
		log.Info("create crop post rejected", zap.Error(err))
		return nil, err
	}

	id, err := s.repo.Create(ctx, uid, input)
	if err != nil {
		return nil, err
	}

	stored := s.storeImages(ctx, id, uploads)
	log.Info("crop post created",
		zap.Int64("id", id),
		zap.Int("images_stored", stored),
		zap.Int("images_received", len(uploads)),
	)

	s.publish(ctx, events.New(events.CropPostCreated, id, uid))

	return s.view(ctx, id, ScopeAny)
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput, uploads []Upload) (*View, error) {
	uid, _, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.Int64("id", id),
		zap.Int64("farmer_id", uid),
	)

	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(ctx, id, ScopeVisible)
	if err != nil {
		return nil, err
	}
	if post.FarmerID != uid {
		log.Warn("update denied, not the owner", zap.Int64("owner_id", post.FarmerID))
		return nil, ErrForbidden
	}
	if err := validateStoredDates(post, input); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, id, uid, input)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	for _, imageID := range input.RemoveImageIDs {
		removed, err := s.images.DeleteByID(ctx, imageID, id)
		if err != nil {
			return nil, err
		}
		if !removed {
			log.Info("image not attached to listing", zap.Int64("image_id", imageID))
		}
	}

	s.storeImages(ctx, id, uploads)
	s.publish(ctx, events.New(events.CropPostUpdated, id, uid))

	return s.view(ctx, id, ScopeVisible)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	_, err := s.transition(ctx, id, StatusDeleted)
	return err
}

func (s *service) ChangeStatus(ctx context.Context, id int64, status Status) (*View, error) {
	if _, err := s.transition(ctx, id, status); err != nil {
		return nil, err
	}
	return s.view(ctx, id, ScopeAny)
}

// transition applies a status change on behalf of the caller. Admins may set
// any valid status; the owning farmer may only withdraw an open listing.
func (s *service) transition(ctx context.Context, id int64, to Status) (*CropPost, error) {
	uid, role, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ChangeStatus"),
		zap.Int64("id", id),
		zap.Int64("actor_id", uid),
		zap.String("to", string(to)),
	)

	var (
		post    *CropPost
		ownerID int64
	)

	switch role {
	case utils.RoleAdmin:
		post, err = s.repo.GetByID(ctx, id, ScopeAny)
		if err != nil {
			return nil, err
		}

	case utils.RoleFarmer:
		if to != StatusDeleted {
			log.Warn("farmer status change denied")
			return nil, ErrForbidden
		}
		post, err = s.repo.GetByID(ctx, id, ScopeVisible)
		if err != nil {
			return nil, err
		}
		if post.FarmerID != uid || !CanFarmerTransition(post.Status, to) {
			log.Warn("farmer status change denied",
				zap.Int64("owner_id", post.FarmerID),
				zap.String("from", string(post.Status)),
			)
			return nil, ErrForbidden
		}
		ownerID = uid

	default:
		return nil, ErrForbidden
	}

	ok, err := s.repo.SetStatus(ctx, id, to, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	log.Info("crop post status changed", zap.String("from", string(post.Status)))

	eventType := events.CropPostStatusChanged
	if to == StatusDeleted {
		eventType = events.CropPostDeleted
	}
	s.publish(ctx, events.New(eventType, id, uid).
		With("from", string(post.Status)).
		With("to", string(to)))

	return post, nil
}

func (s *service) DeleteImage(ctx context.Context, listingID, imageID int64) error {
	uid, _, err := actor(ctx)
	if err != nil {
		return err
	}

	post, err := s.repo.GetByID(ctx, listingID, ScopeVisible)
	if err != nil {
		return err
	}
	if post.FarmerID != uid {
		return ErrForbidden
	}

	removed, err := s.images.DeleteByID(ctx, imageID, listingID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}

	s.publish(ctx, events.New(events.CropPostUpdated, listingID, uid).
		With("image_removed", fmt.Sprint(imageID)))
	return nil
}

// storeImages inserts each upload on its own. A file that cannot be read or
// stored is logged and skipped; the listing itself is kept.
func (s *service) storeImages(ctx context.Context, listingID int64, uploads []Upload) int {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.Int64("listing_id", listingID),
	)

	stored := 0
	for _, up := range uploads {
		data, err := readUpload(up)
		if err == nil {
			_, err = s.images.Insert(ctx, listingID, data)
		}
		if err != nil {
			metrics.ImageUploadsFailed.Inc()
			log.Warn("skipping image upload",
				zap.String("file", up.Name),
				zap.Error(err),
			)
			continue
		}
		stored++
	}
	return stored
}

func readUpload(up Upload) ([]byte, error) {
	if up.Open == nil {
		return nil, errors.New("upload has no content")
	}
	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("upload is empty")
	}
	return data, nil
}

func (s *service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish event",
			zap.String("type", e.Type),
			zap.Int64("listing_id", e.ListingID),
			zap.Error(err),
		)
	}
}
