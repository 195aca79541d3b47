package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"agrimarket-be/internal/croppost"
	"agrimarket-be/internal/pagination"
	"agrimarket-be/internal/utils"

	"github.com/gorilla/mux"
)

// first returns the first non-blank value among the given query keys.
func first(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func parseFilter(q url.Values) (croppost.Filter, error) {
	f := croppost.Filter{
		Category: first(q, "category", "crop_category"),
		District: first(q, "district"),
		CropName: first(q, "search", "crop_name"),
		BulkOnly: utils.ParseBool(first(q, "bulk_only", "has_bulk_pricing")),
	}

	var err error
	if f.MinPrice, err = parsePrice(q, "min_price"); err != nil {
		return croppost.Filter{}, err
	}
	if f.MaxPrice, err = parsePrice(q, "max_price"); err != nil {
		return croppost.Filter{}, err
	}
	return f, nil
}

func parsePrice(q url.Values, key string) (*float64, error) {
	raw := first(q, key)
	if raw == "" {
		return nil, nil
	}
	v, ok := parseNumber(raw)
	if !ok {
		return nil, croppost.NewValidationError(key, "must be a number")
	}
	return &v, nil
}

func parsePage(q url.Values) pagination.Page {
	return pagination.Parse(q.Get("page"), q.Get("limit"))
}

func parseSort(q url.Values) croppost.Sort {
	return croppost.ParseSort(q.Get("sort_by"), q.Get("sort_order"))
}

// pathID reads a numeric route variable. The router only matches digits, so
// a failure here means the value overflowed or was zero.
func pathID(r *http.Request, name string) (int64, bool) {
	return utils.ParseInt64(mux.Vars(r)[name])
}
