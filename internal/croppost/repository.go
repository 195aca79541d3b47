package croppost

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/query"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, params ListParams) ([]CropPost, int, error)
	GetByID(ctx context.Context, id int64, scope Scope) (*CropPost, error)
	Create(ctx context.Context, farmerID int64, input CreateInput) (int64, error)
	Update(ctx context.Context, id, farmerID int64, input UpdateInput) (bool, error)
	SetStatus(ctx context.Context, id int64, status Status, ownerID int64) (bool, error)
	Districts(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCropPost(row rowScanner) (CropPost, error) {
	var (
		p                                 CropPost
		category, unit, status            string
		variety, description, email       sql.NullString
		ownerName, ownerPhone, ownerEmail sql.NullString
		bulk                              sql.NullFloat64
		expiry                            sql.NullTime
	)

	err := row.Scan(
		&p.ID,
		&p.FarmerID,
		&p.CropName,
		&category,
		&variety,
		&p.Quantity,
		&unit,
		&p.PricePerUnit,
		&bulk,
		&p.HarvestDate,
		&expiry,
		&p.Location,
		&p.District,
		&description,
		(*flag)(&p.OrganicCertified),
		(*flag)(&p.PesticideFree),
		(*flag)(&p.FreshlyHarvested),
		&p.ContactNumber,
		&email,
		&status,
		&p.LegacyImages,
		&p.CreatedAt,
		&p.UpdatedAt,
		&ownerName,
		&ownerPhone,
		&ownerEmail,
	)
	if err != nil {
		return CropPost{}, err
	}

	p.Category = Category(category)
	p.Unit = Unit(unit)
	p.Status = Status(status)
	p.Variety = nullStringPtr(variety)
	p.Description = nullStringPtr(description)
	p.Email = nullStringPtr(email)
	if bulk.Valid {
		v := bulk.Float64
		p.MinimumQuantityBulk = &v
	}
	if expiry.Valid {
		t := expiry.Time
		p.ExpiryDate = &t
	}
	p.Owner = Owner{
		Name:  ownerName.String,
		Phone: ownerPhone.String,
		Email: ownerEmail.String,
	}

	return p, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *repository) List(ctx context.Context, params ListParams) ([]CropPost, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.String("scope", params.Scope.String()),
	)

	base := params.Filter.Compile(listingsQuery(), params.Scope)
	if params.FarmerID > 0 {
		base = base.Where(query.Eq("cp.farmer_id", params.FarmerID))
	}

	/* ---------- COUNT ---------- */

	countStmt := base.Count().Build()

	var total int
	if err := r.db.QueryRowContext(ctx, countStmt.SQL, countStmt.Args...).Scan(&total); err != nil {
		log.Error("failed to count crop posts", zap.Error(err))
		return nil, 0, fmt.Errorf("count crop posts: %w", err)
	}

	if total == 0 {
		return []CropPost{}, 0, nil
	}

	/* ---------- PAGE ---------- */

	sort := params.Sort.orZero()
	pageStmt := base.Select(listingColumns).
		OrderBy(sort.Column, sort.Direction).
		OrderBy("cp.id", query.Desc).
		Limit(params.Page.Limit).
		Offset(params.Page.Offset()).
		Build()

	log.Debug("listing crop posts",
		zap.String("sql", pageStmt.SQL),
		zap.Int("total", total),
	)

	rows, err := r.db.QueryContext(ctx, pageStmt.SQL, pageStmt.Args...)
	if err != nil {
		log.Error("failed to query crop posts", zap.Error(err))
		return nil, 0, fmt.Errorf("list crop posts: %w", err)
	}
	defer rows.Close()

	posts := []CropPost{}
	for rows.Next() {
		p, err := scanCropPost(rows)
		if err != nil {
			log.Error("failed to scan crop post", zap.Error(err))
			return nil, 0, fmt.Errorf("scan crop post: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate crop posts: %w", err)
	}

	return posts, total, nil
}

func (r *repository) GetByID(ctx context.Context, id int64, scope Scope) (*CropPost, error) {
	stmt := listingsQuery().
		Select(listingColumns).
		Where(query.Eq("cp.id", id)).
		Where(scope.condition()).
		Build()

	p, err := scanCropPost(r.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get crop post",
			zap.String("layer", "repository"),
			zap.Int64("id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get crop post: %w", err)
	}

	return &p, nil
}

func (r *repository) Create(ctx context.Context, farmerID int64, in CreateInput) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.Int64("farmer_id", farmerID),
	)

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO crop_posts (
			farmer_id, crop_name, crop_category, variety, quantity, unit,
			price_per_unit, minimum_quantity_bulk, harvest_date, expiry_date,
			location, district, description,
			organic_certified, pesticide_free, freshly_harvested,
			contact_number, email, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`,
		farmerID,
		in.CropName,
		in.Category,
		in.Variety,
		in.Quantity,
		in.Unit,
		in.PricePerUnit,
		in.MinimumQuantityBulk,
		in.HarvestDate,
		emptyToNil(in.ExpiryDate),
		in.Location,
		in.District,
		in.Description,
		in.OrganicCertified,
		in.PesticideFree,
		in.FreshlyHarvested,
		in.ContactNumber,
		emptyToNil(in.Email),
		string(StatusActive),
	).Scan(&id)
	if err != nil {
		log.Error("failed to insert crop post", zap.Error(err))
		return 0, fmt.Errorf("insert crop post: %w", err)
	}

	log.Info("crop post created", zap.Int64("id", id))
	return id, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func applyPatch[T any](u *query.UpdateBuilder, column string, p Patch[T]) {
	if v, ok := p.Value(); ok {
		u.Set(column, v)
		return
	}
	if p.IsClear() {
		u.SetRaw(column, "NULL")
	}
}

// Update applies a partial update to a listing owned by farmerID. It reports
// false when no open listing with that id belongs to the farmer.
func (r *repository) Update(ctx context.Context, id, farmerID int64, in UpdateInput) (bool, error) {
	u := query.Update("crop_posts")
	applyPatch(u, "crop_name", in.CropName)
	applyPatch(u, "crop_category", in.Category)
	applyPatch(u, "variety", in.Variety)
	applyPatch(u, "quantity", in.Quantity)
	applyPatch(u, "unit", in.Unit)
	applyPatch(u, "price_per_unit", in.PricePerUnit)
	applyPatch(u, "minimum_quantity_bulk", in.MinimumQuantityBulk)
	applyPatch(u, "harvest_date", in.HarvestDate)
	applyPatch(u, "expiry_date", in.ExpiryDate)
	applyPatch(u, "location", in.Location)
	applyPatch(u, "district", in.District)
	applyPatch(u, "description", in.Description)
	applyPatch(u, "contact_number", in.ContactNumber)
	applyPatch(u, "email", in.Email)
	applyPatch(u, "organic_certified", in.OrganicCertified)
	applyPatch(u, "pesticide_free", in.PesticideFree)
	applyPatch(u, "freshly_harvested", in.FreshlyHarvested)

	stmt := u.SetRaw("updated_at", "NOW()").
		Where(query.Eq("id", id)).
		Where(query.Eq("farmer_id", farmerID)).
		Where(query.NotEq("status", string(StatusDeleted))).
		Build()

	logger.FromCtx(ctx).Debug("updating crop post",
		zap.String("layer", "repository"),
		zap.Int64("id", id),
		zap.Strings("columns", u.Columns()),
	)

	return r.execAffected(ctx, stmt)
}

// SetStatus changes a listing's status. With ownerID > 0 the change is
// limited to that farmer's listing and never leaves a terminal state.
func (r *repository) SetStatus(ctx context.Context, id int64, status Status, ownerID int64) (bool, error) {
	u := query.Update("crop_posts").
		Set("status", string(status)).
		SetRaw("updated_at", "NOW()").
		Where(query.Eq("id", id))

	if ownerID > 0 {
		u.Where(query.Eq("farmer_id", ownerID)).
			Where(query.NotIn("status", terminalStatuses()...))
	}

	return r.execAffected(ctx, u.Build())
}

func (r *repository) execAffected(ctx context.Context, stmt query.Statement) (bool, error) {
	res, err := r.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update crop post",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return false, fmt.Errorf("update crop post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update crop post rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *repository) Districts(ctx context.Context) ([]string, error) {
	stmt := query.From("crop_posts cp").
		Select("DISTINCT cp.district").
		Where(ScopeActive.condition()).
		OrderBy("cp.district", query.Asc).
		Build()

	rows, err := r.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	defer rows.Close()

	districts := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan district: %w", err)
		}
		districts = append(districts, d)
	}
	return districts, rows.Err()
}

func (r *repository) Statistics(ctx context.Context) (*Statistics, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Statistics"),
	)

	base := query.From("crop_posts cp").Where(ScopeActive.condition())
	stats := &Statistics{ByCategory: []CategoryCount{}, ByDistrict: []DistrictCount{}}

	total := base.Count().Build()
	if err := r.db.QueryRowContext(ctx, total.SQL, total.Args...).Scan(&stats.TotalPosts); err != nil {
		log.Error("failed to count posts", zap.Error(err))
		return nil, fmt.Errorf("count posts: %w", err)
	}

	byCategory := base.Select("cp.crop_category", "COUNT(*)").
		GroupBy("cp.crop_category").
		OrderBy("COUNT(*)", query.Desc).
		Build()
	err := r.eachRow(ctx, byCategory, func(rows *sql.Rows) error {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return err
		}
		stats.ByCategory = append(stats.ByCategory, c)
		return nil
	})
	if err != nil {
		log.Error("failed to group by category", zap.Error(err))
		return nil, fmt.Errorf("stats by category: %w", err)
	}

	byDistrict := base.Select("cp.district", "COUNT(*)").
		GroupBy("cp.district").
		OrderBy("COUNT(*)", query.Desc).
		OrderBy("cp.district", query.Asc).
		Limit(10).
		Build()
	err = r.eachRow(ctx, byDistrict, func(rows *sql.Rows) error {
		var d DistrictCount
		if err := rows.Scan(&d.District, &d.Count); err != nil {
			return err
		}
		stats.ByDistrict = append(stats.ByDistrict, d)
		return nil
	})
	if err != nil {
		log.Error("failed to group by district", zap.Error(err))
		return nil, fmt.Errorf("stats by district: %w", err)
	}

	recent := base.Where(query.Gte("cp.created_at", r.now().AddDate(0, 0, -7))).Count().Build()
	if err := r.db.QueryRowContext(ctx, recent.SQL, recent.Args...).Scan(&stats.RecentPosts); err != nil {
		log.Error("failed to count recent posts", zap.Error(err))
		return nil, fmt.Errorf("count recent posts: %w", err)
	}

	return stats, nil
}

func (r *repository) eachRow(ctx context.Context, stmt query.Statement, fn func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
