package croppost

import (
	"fmt"
	"time"

	"agrimarket-be/internal/pagination"
)

const dateLayout = "2006-01-02"

type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryGrains     Category = "grains"
)

type Unit string

const (
	UnitKg      Unit = "kg"
	UnitGram    Unit = "g"
	UnitTons    Unit = "tons"
	UnitBags    Unit = "bags"
	UnitPieces  Unit = "pieces"
	UnitBunches Unit = "bunches"
)

// Owner is the farmer's public contact projection joined from users.
type Owner struct {
	Name  string
	Phone string
	Email string
}

// CropPost is one row of crop_posts with its owner projection.
type CropPost struct {
	ID                  int64
	FarmerID            int64
	CropName            string
	Category            Category
	Variety             *string
	Quantity            float64
	Unit                Unit
	PricePerUnit        float64
	MinimumQuantityBulk *float64
	HarvestDate         time.Time
	ExpiryDate          *time.Time
	Location            string
	District            string
	Description         *string
	OrganicCertified    bool
	PesticideFree       bool
	FreshlyHarvested    bool
	ContactNumber       string
	Email               *string
	Status              Status
	LegacyImages        LegacyImages
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Owner Owner
}

// flag scans boolean columns that older rows stored as 0/1.
type flag bool

func (f *flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case bool:
		*f = flag(v)
	case int64:
		*f = v != 0
	case []byte:
		*f = parseFlag(string(v))
	case string:
		*f = parseFlag(v)
	default:
		return fmt.Errorf("flag: unsupported type %T", src)
	}
	return nil
}

func parseFlag(s string) flag {
	switch s {
	case "1", "t", "true", "TRUE", "y", "yes":
		return true
	}
	return false
}

type ImageRef struct {
	ID  *int64 `json:"id,omitempty"`
	URL string `json:"url"`
}

// View is the enriched representation returned to clients.
type View struct {
	ID                  int64     `json:"id"`
	FarmerID            int64     `json:"farmer_id"`
	CropName            string    `json:"crop_name"`
	Category            Category  `json:"crop_category"`
	Variety             *string   `json:"variety"`
	Quantity            float64   `json:"quantity"`
	Unit                Unit      `json:"unit"`
	PricePerUnit        float64   `json:"price_per_unit"`
	MinimumQuantityBulk *float64  `json:"minimum_quantity_bulk"`
	HarvestDate         string    `json:"harvest_date"`
	ExpiryDate          *string   `json:"expiry_date"`
	Location            string    `json:"location"`
	District            string    `json:"district"`
	Description         *string   `json:"description"`
	OrganicCertified    bool      `json:"organic_certified"`
	PesticideFree       bool      `json:"pesticide_free"`
	FreshlyHarvested    bool      `json:"freshly_harvested"`
	ContactNumber       string    `json:"contact_number"`
	Email               *string   `json:"email"`
	Status              Status    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	FarmerName  string `json:"farmer_name"`
	FarmerPhone string `json:"farmer_phone"`
	FarmerEmail string `json:"farmer_email"`

	HasMinimumBulk   bool       `json:"has_minimum_bulk"`
	BulkEligible     bool       `json:"bulk_eligible"`
	TotalValue       float64    `json:"total_value"`
	BulkMinimumValue *float64   `json:"bulk_minimum_value"`
	Images           []ImageRef `json:"images"`
}

// BulkView annotates a listing that carries a bulk tier.
type BulkView struct {
	*View
	BulkBatchesAvailable float64 `json:"bulk_batches_available"`
	MinimumBulkCost      float64 `json:"minimum_bulk_cost"`
}

type CreateInput struct {
	CropName            string   `json:"crop_name" validate:"required,min=2,max=100"`
	Category            string   `json:"crop_category" validate:"required,oneof=vegetables grains"`
	Variety             *string  `json:"variety" validate:"omitempty,max=100"`
	Quantity            float64  `json:"quantity" validate:"gt=0,lt=10000000000"`
	Unit                string   `json:"unit" validate:"required,oneof=kg g tons bags pieces bunches"`
	PricePerUnit        float64  `json:"price_per_unit" validate:"gt=0,lt=10000000000"`
	MinimumQuantityBulk *float64 `json:"minimum_quantity_bulk"`
	HarvestDate         string   `json:"harvest_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate          *string  `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	Location            string   `json:"location" validate:"required,min=10,max=500"`
	District            string   `json:"district" validate:"required,min=2,max=50"`
	Description         *string  `json:"description" validate:"omitempty,max=1000"`
	ContactNumber       string   `json:"contact_number" validate:"required,phone"`
	Email               *string  `json:"email" validate:"omitempty,email"`
	OrganicCertified    bool     `json:"organic_certified"`
	PesticideFree       bool     `json:"pesticide_free"`
	FreshlyHarvested    bool     `json:"freshly_harvested"`
}

// UpdateInput is a partial update. Fields left as the zero Patch are untouched.
type UpdateInput struct {
	CropName            Patch[string]
	Category            Patch[string]
	Variety             Patch[string]
	Quantity            Patch[float64]
	Unit                Patch[string]
	PricePerUnit        Patch[float64]
	MinimumQuantityBulk Patch[float64]
	HarvestDate         Patch[string]
	ExpiryDate          Patch[string]
	Location            Patch[string]
	District            Patch[string]
	Description         Patch[string]
	ContactNumber       Patch[string]
	Email               Patch[string]
	OrganicCertified    Patch[bool]
	PesticideFree       Patch[bool]
	FreshlyHarvested    Patch[bool]

	RemoveImageIDs []int64
}

type ListParams struct {
	Filter   Filter
	Scope    Scope
	Sort     Sort
	Page     pagination.Page
	FarmerID int64
}

type ListResult struct {
	Posts          []*View         `json:"posts"`
	Pagination     pagination.Meta `json:"pagination"`
	FiltersApplied map[string]any  `json:"filters_applied"`
}

type BulkListResult struct {
	Posts          []*BulkView     `json:"posts"`
	Pagination     pagination.Meta `json:"pagination"`
	FiltersApplied map[string]any  `json:"filters_applied"`
}

type SearchResult struct {
	Posts []*View `json:"posts"`
	Total int     `json:"total"`
}

type CategoryCount struct {
	Category Category `json:"crop_category"`
	Count    int      `json:"count"`
}

type DistrictCount struct {
	District string `json:"district"`
	Count    int    `json:"count"`
}

type Statistics struct {
	TotalPosts  int             `json:"total_posts"`
	ByCategory  []CategoryCount `json:"by_category"`
	ByDistrict  []DistrictCount `json:"by_district"`
	RecentPosts int             `json:"recent_posts"`
}

type Districts struct {
	Active []string `json:"districts"`
	All    []string `json:"all_districts"`
}

// AllDistricts is the fixed reference list of districts a listing may name.
var AllDistricts = []string{
	"Ampara", "Anuradhapura", "Badulla", "Batticaloa", "Colombo",
	"Galle", "Gampaha", "Hambantota", "Jaffna", "Kalutara",
	"Kandy", "Kegalle", "Kilinochchi", "Kurunegala", "Mannar",
	"Matale", "Matara", "Monaragala", "Mullaitivu", "Nuwara Eliya",
	"Polonnaruwa", "Puttalam", "Ratnapura", "Trincomalee", "Vavuniya",
}
