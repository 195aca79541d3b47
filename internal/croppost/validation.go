package croppost

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// maxAmount is the exclusive upper bound of a NUMERIC(12,2) column.
const maxAmount = 1e10

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-\(\)]{10,20}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Per-field rules for partial updates; these mirror the CreateInput tags.
var updateRules = map[string]string{
	"crop_name":      "min=2,max=100",
	"crop_category":  "oneof=vegetables grains",
	"variety":        "max=100",
	"unit":           "oneof=kg g tons bags pieces bunches",
	"harvest_date":   "datetime=2006-01-02",
	"expiry_date":    "datetime=2006-01-02",
	"location":       "min=10,max=500",
	"district":       "min=2,max=50",
	"description":    "max=1000",
	"contact_number": "phone",
	"email":          "email",
}

func validateCreate(in CreateInput) error {
	verr := &ValidationError{}

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), fieldMessage(fe))
		}
	}

	if in.MinimumQuantityBulk != nil {
		if msg := amountMessage(*in.MinimumQuantityBulk); msg != "" {
			verr.add("minimum_quantity_bulk", msg)
		}
	}

	checkDates(verr, in.HarvestDate, in.ExpiryDate)

	return verr.orNil()
}

func validateUpdate(in UpdateInput) error {
	verr := &ValidationError{}

	checkString := func(field string, p Patch[string], clearable bool) {
		if p.IsClear() {
			if !clearable {
				verr.add(field, "cannot be cleared")
			}
			return
		}
		v, ok := p.Value()
		if !ok {
			return
		}
		if strings.TrimSpace(v) == "" {
			verr.add(field, "cannot be empty")
			return
		}
		if err := validate.Var(v, updateRules[field]); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				verr.add(field, fieldMessage(fieldErrs[0]))
				return
			}
			verr.add(field, "is invalid")
		}
	}

	checkPositive := func(field string, p Patch[float64], clearable bool) {
		if p.IsClear() && !clearable {
			verr.add(field, "cannot be cleared")
			return
		}
		if v, ok := p.Value(); ok {
			if msg := amountMessage(v); msg != "" {
				verr.add(field, msg)
			}
		}
	}

	checkString("crop_name", in.CropName, false)
	checkString("crop_category", in.Category, false)
	checkString("variety", in.Variety, true)
	checkPositive("quantity", in.Quantity, false)
	checkString("unit", in.Unit, false)
	checkPositive("price_per_unit", in.PricePerUnit, false)
	checkPositive("minimum_quantity_bulk", in.MinimumQuantityBulk, true)
	checkString("harvest_date", in.HarvestDate, false)
	checkString("expiry_date", in.ExpiryDate, true)
	checkString("location", in.Location, false)
	checkString("district", in.District, false)
	checkString("description", in.Description, true)
	checkString("contact_number", in.ContactNumber, false)
	checkString("email", in.Email, true)

	if in.OrganicCertified.IsClear() {
		verr.add("organic_certified", "cannot be cleared")
	}
	if in.PesticideFree.IsClear() {
		verr.add("pesticide_free", "cannot be cleared")
	}
	if in.FreshlyHarvested.IsClear() {
		verr.add("freshly_harvested", "cannot be cleared")
	}

	if h, ok := in.HarvestDate.Value(); ok {
		if e, ok := in.ExpiryDate.Value(); ok {
			checkDates(verr, h, &e)
		}
	}

	return verr.orNil()
}

// validateStoredDates applies the expiry rule to the post as it will look
// after the patch, so a patch carrying only one of the dates is still checked.
func validateStoredDates(post *CropPost, in UpdateInput) error {
	harvest := post.HarvestDate.Format(dateLayout)
	if v, ok := in.HarvestDate.Value(); ok {
		harvest = v
	}

	var expiry *string
	if post.ExpiryDate != nil {
		e := post.ExpiryDate.Format(dateLayout)
		expiry = &e
	}
	switch {
	case in.ExpiryDate.IsClear():
		expiry = nil
	case in.ExpiryDate.IsSet():
		v, _ := in.ExpiryDate.Value()
		expiry = &v
	}

	verr := &ValidationError{}
	checkDates(verr, harvest, expiry)
	return verr.orNil()
}

// amountMessage checks a quantity or price against the column range.
func amountMessage(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "must be a finite number"
	case v <= 0:
		return "must be greater than 0"
	case v >= maxAmount:
		return "must be less than 10000000000"
	}
	return ""
}

// checkDates rejects an expiry before the harvest date. Malformed dates are
// reported by the tag rules already.
func checkDates(verr *ValidationError, harvest string, expiry *string) {
	if expiry == nil || *expiry == "" {
		return
	}
	h, err := time.Parse(dateLayout, harvest)
	if err != nil {
		return
	}
	e, err := time.Parse(dateLayout, *expiry)
	if err != nil {
		return
	}
	if e.Before(h) {
		verr.add("expiry_date", "must not be before harvest_date")
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	default:
		return "is invalid"
	}
}
