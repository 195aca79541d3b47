package croppost

import (
	"testing"

	"agrimarket-be/internal/query"
	"agrimarket-be/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestFilter_EmptyFieldsAreOmitted(t *testing.T) {
	stmt := Filter{Category: "  ", District: ""}.Compile(query.From("crop_posts cp"), ScopeVisible).Build()

	assert.Equal(t, "SELECT * FROM crop_posts cp WHERE cp.status <> $1", stmt.SQL)
	assert.Equal(t, []any{"deleted"}, stmt.Args)
}

func TestFilter_AllFields(t *testing.T) {
	f := Filter{
		Category: "vegetables",
		District: "Kandy",
		CropName: "carrot",
		MinPrice: utils.Float64Ptr(10),
		MaxPrice: utils.Float64Ptr(20),
		BulkOnly: true,
	}

	stmt := f.Compile(query.From("crop_posts cp"), ScopeActive).Build()

	assert.Equal(t,
		"SELECT * FROM crop_posts cp WHERE cp.status = $1 AND cp.crop_category = $2 AND cp.district = $3 AND cp.crop_name ILIKE $4 AND cp.price_per_unit >= $5 AND cp.price_per_unit <= $6 AND cp.minimum_quantity_bulk IS NOT NULL",
		stmt.SQL)
	assert.Equal(t, []any{"active", "vegetables", "Kandy", "%carrot%", 10.0, 20.0}, stmt.Args)
}

func TestFilter_ScopeAnyAddsNothing(t *testing.T) {
	stmt := Filter{}.Compile(query.From("crop_posts cp"), ScopeAny).Build()
	assert.Equal(t, "SELECT * FROM crop_posts cp", stmt.SQL)
}

func TestFilter_CountAndPageAgree(t *testing.T) {
	filters := []Filter{
		{},
		{Category: "grains"},
		{CropName: "rice", BulkOnly: true},
		{MinPrice: utils.Float64Ptr(1), District: "Galle"},
		{MaxPrice: utils.Float64Ptr(5), MinPrice: utils.Float64Ptr(1), Category: "vegetables", District: "Jaffna", CropName: "onion", BulkOnly: true},
	}

	for _, f := range filters {
		for _, scope := range []Scope{ScopeVisible, ScopeActive, ScopeAny} {
			base := f.Compile(listingsQuery(), scope)
			count := base.Count().Build()
			page := base.Select(listingColumns).OrderBy("cp.created_at", query.Desc).Limit(10).Offset(20).Build()

			predicate, args := base.Predicate()
			if predicate != "" {
				assert.Contains(t, count.SQL, "WHERE "+predicate)
				assert.Contains(t, page.SQL, "WHERE "+predicate+" ORDER BY")
			} else {
				assert.NotContains(t, count.SQL, "WHERE")
			}
			assert.Equal(t, len(args), len(count.Args))
			for i := range count.Args {
				assert.Equal(t, count.Args[i], page.Args[i])
			}
		}
	}
}

func TestFilter_Applied(t *testing.T) {
	assert.Empty(t, Filter{}.Applied())

	applied := Filter{Category: "grains", MinPrice: utils.Float64Ptr(3), BulkOnly: true}.Applied()
	assert.Equal(t, map[string]any{"category": "grains", "min_price": 3.0, "bulk_only": true}, applied)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, DefaultSort, ParseSort("", ""))
	assert.Equal(t, DefaultSort, ParseSort("farmer_id; DROP TABLE", "asc"))
	assert.Equal(t, Sort{Column: "cp.price_per_unit", Direction: query.Asc}, ParseSort("price_per_unit", "ASC"))
	assert.Equal(t, Sort{Column: "cp.quantity", Direction: query.Desc}, ParseSort("quantity", ""))
	assert.Equal(t, DefaultSort, Sort{}.orZero())
}
