package croppost

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"agrimarket-be/internal/cropimage"
	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ImageLister is the part of the image store the assembler needs.
type ImageLister interface {
	GetByListing(ctx context.Context, listingID int64) ([]cropimage.Image, error)
}

// Assembler turns stored rows into client views: computed pricing fields and
// image URLs resolved from the image store.
type Assembler struct {
	images      ImageLister
	baseURL     string
	uploadsURL  string
	concurrency int
}

// NewAssembler builds image URLs under baseURL. Legacy file references
// resolve under the uploads root next to it ({base without /api}/uploads)
// unless WithUploadsURL says otherwise.
func NewAssembler(images ImageLister, baseURL string, concurrency int) *Assembler {
	if concurrency <= 0 {
		concurrency = 1
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Assembler{
		images:      images,
		baseURL:     baseURL,
		uploadsURL:  uploadsRoot(baseURL),
		concurrency: concurrency,
	}
}

func (a *Assembler) WithUploadsURL(root string) *Assembler {
	if root != "" {
		a.uploadsURL = strings.TrimRight(root, "/")
	}
	return a
}

func uploadsRoot(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "/uploads"
	}
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api")
	return strings.TrimRight(u.String(), "/") + "/uploads"
}

// Assemble enriches every post. Image lookups run concurrently; the result
// keeps the order of posts.
func (a *Assembler) Assemble(ctx context.Context, posts []CropPost) ([]*View, error) {
	views := make([]*View, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	timer := metrics.StartTimer()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range posts {
		g.Go(func() error {
			v, err := a.AssembleOne(gctx, posts[i])
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Debug("assembled crop posts",
		zap.Int("count", len(posts)),
		zap.Duration("duration", timer.Duration()),
	)
	return views, nil
}

func (a *Assembler) AssembleOne(ctx context.Context, p CropPost) (*View, error) {
	stored, err := a.images.GetByListing(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("images for crop post %d: %w", p.ID, err)
	}

	v := newView(p)
	v.Images = a.imageRefs(p, stored)

	metrics.ListingsAssembled.Inc()
	return v, nil
}

func (a *Assembler) imageRefs(p CropPost, stored []cropimage.Image) []ImageRef {
	refs := make([]ImageRef, 0, len(stored))

	for _, img := range stored {
		id := img.ID
		refs = append(refs, ImageRef{
			ID:  &id,
			URL: fmt.Sprintf("%s/crop-posts/%d/images/%d", a.baseURL, p.ID, img.ID),
		})
	}

	if len(refs) == 0 && p.LegacyImages.Kind == LegacyParsed {
		for _, ref := range p.LegacyImages.Refs {
			refs = append(refs, ImageRef{URL: legacyURL(a.uploadsURL, ref)})
		}
	}

	return refs
}

func newView(p CropPost) *View {
	v := &View{
		ID:                  p.ID,
		FarmerID:            p.FarmerID,
		CropName:            p.CropName,
		Category:            p.Category,
		Variety:             p.Variety,
		Quantity:            p.Quantity,
		Unit:                p.Unit,
		PricePerUnit:        p.PricePerUnit,
		MinimumQuantityBulk: p.MinimumQuantityBulk,
		HarvestDate:         p.HarvestDate.Format(dateLayout),
		Location:            p.Location,
		District:            p.District,
		Description:         p.Description,
		OrganicCertified:    p.OrganicCertified,
		PesticideFree:       p.PesticideFree,
		FreshlyHarvested:    p.FreshlyHarvested,
		ContactNumber:       p.ContactNumber,
		Email:               p.Email,
		Status:              p.Status,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,

		FarmerName:  p.Owner.Name,
		FarmerPhone: p.Owner.Phone,
		FarmerEmail: p.Owner.Email,

		TotalValue: p.PricePerUnit * p.Quantity,
		Images:     []ImageRef{},
	}

	if p.ExpiryDate != nil {
		s := p.ExpiryDate.Format(dateLayout)
		v.ExpiryDate = &s
	}

	if p.MinimumQuantityBulk != nil {
		v.HasMinimumBulk = true
		v.BulkEligible = true
		bulkValue := p.PricePerUnit * *p.MinimumQuantityBulk
		v.BulkMinimumValue = &bulkValue
	}

	return v
}

// NewBulkView annotates a view whose listing has a bulk tier. It returns nil
// when there is none.
func NewBulkView(v *View) *BulkView {
	if v == nil || v.MinimumQuantityBulk == nil || *v.MinimumQuantityBulk <= 0 {
		return nil
	}
	bulk := *v.MinimumQuantityBulk
	return &BulkView{
		View:                 v,
		BulkBatchesAvailable: v.Quantity / bulk,
		MinimumBulkCost:      v.PricePerUnit * bulk,
	}
}
