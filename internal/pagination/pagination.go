package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// maxOffset keeps (page-1)*limit inside a Postgres integer.
	maxOffset = math.MaxInt32
)

// Page is the requested window over a result set.
type Page struct {
	Number int
	Limit  int
}

// Meta is the pagination block returned alongside a page of results.
type Meta struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

// Parse reads raw page/limit values. Missing, non-numeric or non-positive
// values fall back to the defaults. Limit is capped at MaxLimit and page is
// capped so the offset stays in range; pages past the end are left alone.
func Parse(pageRaw, limitRaw string) Page {
	return New(parsePositive(pageRaw, DefaultPage), parsePositive(limitRaw, DefaultLimit))
}

// New builds a Page, applying the same defaults and caps as Parse.
func New(number, limit int) Page {
	if number <= 0 {
		number = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := maxOffset/limit + 1; number > maxPage {
		number = maxPage
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// NewMeta derives page metadata for total matching items.
func NewMeta(p Page, total int) Meta {
	if total < 0 {
		total = 0
	}
	return Meta{
		CurrentPage:  p.Number,
		TotalPages:   TotalPages(total, p.Limit),
		TotalItems:   total,
		ItemsPerPage: p.Limit,
	}
}

// TotalPages is ceil(total/limit), and 0 for an empty result.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func parsePositive(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return math.MaxInt
	}
	if err != nil || n <= 0 {
		return def
	}
	return n
}
