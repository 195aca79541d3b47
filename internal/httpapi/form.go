package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"agrimarket-be/internal/croppost"
	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/utils"

	"go.uber.org/zap"
)

const (
	maxImages      = 5
	maxImageSize   = 5 << 20
	maxFormMemory  = 32 << 20
	maxRequestSize = maxImages*maxImageSize + 1<<20
	imageField     = "images"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// fields is a flat view over a request body, keyed by field name. A key
// that is present with an empty value is distinct from a missing key.
type fields interface {
	values(key string) ([]string, bool)
}

type formFields url.Values

func (f formFields) values(key string) ([]string, bool) {
	vs, ok := f[key]
	return vs, ok && len(vs) > 0
}

// jsonFields flattens a JSON object. null becomes an empty value.
type jsonFields map[string]any

func (f jsonFields) values(key string) ([]string, bool) {
	v, ok := f[key]
	if !ok {
		return nil, false
	}
	if arr, isArr := v.([]any); isArr {
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			out = append(out, jsonScalar(e))
		}
		return out, true
	}
	return []string{jsonScalar(v)}, true
}

func jsonScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// requestBody is a decoded write request: its fields plus any image uploads.
type requestBody struct {
	fields  fields
	uploads []croppost.Upload
	form    *multipart.Form
}

// close removes multipart temp files. Failures are only logged.
func (b *requestBody) close(r *http.Request) {
	if b.form == nil {
		return
	}
	if err := b.form.RemoveAll(); err != nil {
		logger.FromCtx(r.Context()).Warn("failed to remove multipart temp files", zap.Error(err))
	}
}

func readBody(w http.ResponseWriter, r *http.Request) (*requestBody, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, croppost.NewValidationError(imageField, "request is too large")
			}
			return nil, croppost.NewValidationError("body", "malformed multipart form")
		}
		body := &requestBody{fields: formFields(r.MultipartForm.Value), form: r.MultipartForm}
		uploads, err := collectUploads(r.MultipartForm.File[imageField])
		if err != nil {
			body.close(r)
			return nil, err
		}
		body.uploads = uploads
		return body, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, croppost.NewValidationError("body", "malformed form")
		}
		return &requestBody{fields: formFields(r.PostForm)}, nil

	default:
		obj := map[string]any{}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&obj); err != nil {
			return nil, croppost.NewValidationError("body", "invalid JSON body")
		}
		return &requestBody{fields: jsonFields(obj)}, nil
	}
}

// collectUploads enforces the upload rules before anything is stored: file
// count, per-file size and a sniffed image type.
func collectUploads(files []*multipart.FileHeader) ([]croppost.Upload, error) {
	if len(files) > maxImages {
		return nil, croppost.NewValidationError(imageField, fmt.Sprintf("at most %d images are allowed", maxImages))
	}

	uploads := make([]croppost.Upload, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxImageSize {
			return nil, croppost.NewValidationError(imageField, fh.Filename+" exceeds the 5 MB limit")
		}

		ct, err := sniff(fh)
		if err != nil {
			return nil, croppost.NewValidationError(imageField, fh.Filename+" could not be read")
		}
		if !allowedImageTypes[ct] {
			return nil, croppost.NewValidationError(imageField, "only JPEG, PNG and WebP images are allowed")
		}

		uploads = append(uploads, croppost.Upload{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return uploads, nil
}

func sniff(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	ct, _, _ := mime.ParseMediaType(http.DetectContentType(head[:n]))
	return ct, nil
}

/* ---------- FIELD PARSING ---------- */

// camel turns crop_name into cropName; both spellings are accepted.
func camel(field string) string {
	parts := strings.Split(field, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

type formParser struct {
	src  fields
	errs []croppost.FieldError
}

func (p *formParser) lookup(field string) ([]string, bool) {
	if vs, ok := p.src.values(field); ok {
		return vs, true
	}
	return p.src.values(camel(field))
}

func (p *formParser) raw(field string) (string, bool) {
	vs, ok := p.lookup(field)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(vs[0]), true
}

func (p *formParser) fail(field, msg string) {
	p.errs = append(p.errs, croppost.FieldError{Field: field, Message: msg})
}

func (p *formParser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return &croppost.ValidationError{Fields: p.errs}
}

func (p *formParser) str(field string) string {
	v, _ := p.raw(field)
	return v
}

func (p *formParser) optStr(field string) *string {
	v, ok := p.raw(field)
	if !ok || v == "" {
		return nil
	}
	return &v
}

func (p *formParser) number(field string) float64 {
	v := p.optNumber(field)
	if v == nil {
		return 0
	}
	return *v
}

func (p *formParser) optNumber(field string) *float64 {
	v, ok := p.raw(field)
	if !ok || v == "" {
		return nil
	}
	n, ok := parseNumber(v)
	if !ok {
		p.fail(field, "must be a number")
		return nil
	}
	return &n
}

func (p *formParser) integer(field string) int {
	v, ok := p.raw(field)
	if !ok || v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(field, "must be a whole number")
		return 0
	}
	return n
}

func (p *formParser) flag(field string) bool {
	return utils.ParseBool(p.str(field))
}

func (p *formParser) patchStr(field string) croppost.Patch[string] {
	v, ok := p.raw(field)
	switch {
	case !ok:
		return croppost.Patch[string]{}
	case v == "":
		return croppost.Clear[string]()
	default:
		return croppost.Set(v)
	}
}

func (p *formParser) patchNumber(field string) croppost.Patch[float64] {
	v, ok := p.raw(field)
	switch {
	case !ok:
		return croppost.Patch[float64]{}
	case v == "":
		return croppost.Clear[float64]()
	}
	n, ok := parseNumber(v)
	if !ok {
		p.fail(field, "must be a number")
		return croppost.Patch[float64]{}
	}
	return croppost.Set(n)
}

// parseNumber accepts finite decimal values only; ParseFloat alone lets
// "Inf" and "NaN" through.
func parseNumber(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func (p *formParser) patchFlag(field string) croppost.Patch[bool] {
	v, ok := p.raw(field)
	switch {
	case !ok:
		return croppost.Patch[bool]{}
	case v == "":
		return croppost.Clear[bool]()
	default:
		return croppost.Set(utils.ParseBool(v))
	}
}

func (p *formParser) ids(field string) []int64 {
	vs, _ := p.lookup(field)
	return utils.SplitIDs(vs...)
}

func createInput(src fields) (croppost.CreateInput, error) {
	p := &formParser{src: src}
	in := croppost.CreateInput{
		CropName:            p.str("crop_name"),
		Category:            p.str("crop_category"),
		Variety:             p.optStr("variety"),
		Quantity:            p.number("quantity"),
		Unit:                p.str("unit"),
		PricePerUnit:        p.number("price_per_unit"),
		MinimumQuantityBulk: p.optNumber("minimum_quantity_bulk"),
		HarvestDate:         p.str("harvest_date"),
		ExpiryDate:          p.optStr("expiry_date"),
		Location:            p.str("location"),
		District:            p.str("district"),
		Description:         p.optStr("description"),
		ContactNumber:       p.str("contact_number"),
		Email:               p.optStr("email"),
		OrganicCertified:    p.flag("organic_certified"),
		PesticideFree:       p.flag("pesticide_free"),
		FreshlyHarvested:    p.flag("freshly_harvested"),
	}
	return in, p.err()
}

// updateInput reads a partial update: a missing field is kept, a field sent
// empty is cleared.
func updateInput(src fields) (croppost.UpdateInput, error) {
	p := &formParser{src: src}
	in := croppost.UpdateInput{
		CropName:            p.patchStr("crop_name"),
		Category:            p.patchStr("crop_category"),
		Variety:             p.patchStr("variety"),
		Quantity:            p.patchNumber("quantity"),
		Unit:                p.patchStr("unit"),
		PricePerUnit:        p.patchNumber("price_per_unit"),
		MinimumQuantityBulk: p.patchNumber("minimum_quantity_bulk"),
		HarvestDate:         p.patchStr("harvest_date"),
		ExpiryDate:          p.patchStr("expiry_date"),
		Location:            p.patchStr("location"),
		District:            p.patchStr("district"),
		Description:         p.patchStr("description"),
		ContactNumber:       p.patchStr("contact_number"),
		Email:               p.patchStr("email"),
		OrganicCertified:    p.patchFlag("organic_certified"),
		PesticideFree:       p.patchFlag("pesticide_free"),
		FreshlyHarvested:    p.patchFlag("freshly_harvested"),
		RemoveImageIDs:      p.ids("remove_image_ids"),
	}
	return in, p.err()
}
