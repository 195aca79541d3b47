package croppost

import (
	"strings"

	"agrimarket-be/internal/query"
)

// Scope is the base status predicate a read path is bound to.
type Scope int

const (
	// ScopeVisible hides soft-deleted listings.
	ScopeVisible Scope = iota
	// ScopeActive restricts to listings currently on offer.
	ScopeActive
	// ScopeAny applies no status predicate (admin lookups).
	ScopeAny
)

func (s Scope) condition() query.Condition {
	switch s {
	case ScopeVisible:
		return query.NotEq("cp.status", string(StatusDeleted))
	case ScopeActive:
		return query.Eq("cp.status", string(StatusActive))
	default:
		return nil
	}
}

func (s Scope) String() string {
	switch s {
	case ScopeVisible:
		return "visible"
	case ScopeActive:
		return "active"
	default:
		return "any"
	}
}

// Filter is the optional narrowing a caller asked for. Zero fields are
// omitted from the predicate entirely.
type Filter struct {
	Category string
	District string
	CropName string
	MinPrice *float64
	MaxPrice *float64
	BulkOnly bool
}

func (f Filter) conditions() []query.Condition {
	var conds []query.Condition

	if c := strings.TrimSpace(f.Category); c != "" {
		conds = append(conds, query.Eq("cp.crop_category", c))
	}
	if d := strings.TrimSpace(f.District); d != "" {
		conds = append(conds, query.Eq("cp.district", d))
	}
	if n := strings.TrimSpace(f.CropName); n != "" {
		conds = append(conds, query.Contains("cp.crop_name", n))
	}
	if f.MinPrice != nil {
		conds = append(conds, query.Gte("cp.price_per_unit", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, query.Lte("cp.price_per_unit", *f.MaxPrice))
	}
	if f.BulkOnly {
		conds = append(conds, query.IsNotNull("cp.minimum_quantity_bulk"))
	}

	return conds
}

// Applied echoes the effective filters back to the client.
func (f Filter) Applied() map[string]any {
	applied := map[string]any{}
	if c := strings.TrimSpace(f.Category); c != "" {
		applied["category"] = c
	}
	if d := strings.TrimSpace(f.District); d != "" {
		applied["district"] = d
	}
	if n := strings.TrimSpace(f.CropName); n != "" {
		applied["search"] = n
	}
	if f.MinPrice != nil {
		applied["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		applied["max_price"] = *f.MaxPrice
	}
	if f.BulkOnly {
		applied["bulk_only"] = true
	}
	return applied
}

// Compile scopes base with the status predicate followed by every filter
// clause. The result feeds both the page query and its Count().
func (f Filter) Compile(base *query.Builder, scope Scope) *query.Builder {
	b := base.Where(scope.condition())
	for _, c := range f.conditions() {
		b = b.Where(c)
	}
	return b
}

// Sort is a whitelisted ORDER BY column.
type Sort struct {
	Column    string
	Direction query.Direction
}

var sortColumns = map[string]string{
	"created_at":     "cp.created_at",
	"price_per_unit": "cp.price_per_unit",
	"quantity":       "cp.quantity",
	"harvest_date":   "cp.harvest_date",
	"crop_name":      "cp.crop_name",
}

// DefaultSort is newest first.
var DefaultSort = Sort{Column: "cp.created_at", Direction: query.Desc}

// ParseSort maps sort_by/sort_order to a Sort, falling back to DefaultSort
// for unknown columns.
func ParseSort(by, order string) Sort {
	col, ok := sortColumns[strings.ToLower(strings.TrimSpace(by))]
	if !ok {
		return DefaultSort
	}
	dir := query.Desc
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		dir = query.Asc
	}
	return Sort{Column: col, Direction: dir}
}

func (s Sort) orZero() Sort {
	if s.Column == "" {
		return DefaultSort
	}
	return s
}

const listingColumns = `cp.id, cp.farmer_id, cp.crop_name, cp.crop_category, cp.variety,
	cp.quantity, cp.unit, cp.price_per_unit, cp.minimum_quantity_bulk,
	cp.harvest_date, cp.expiry_date, cp.location, cp.district, cp.description,
	cp.organic_certified, cp.pesticide_free, cp.freshly_harvested,
	cp.contact_number, cp.email, cp.status, cp.images, cp.created_at, cp.updated_at,
	u.full_name, u.phone_number, u.email`

func listingsQuery() *query.Builder {
	return query.From("crop_posts cp").
		Join("LEFT JOIN users u ON u.id = cp.farmer_id")
}
