package card

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"librarycard/internal/assets"
)

// FieldError names one violated field using its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Names returns the violated field names in declaration order.
func (e *ValidationError) Names() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Field
	}
	return out
}

// CourseCatalog resolves the courses offered by a department.
type CourseCatalog interface {
	CoursesFor(department string) ([]string, bool)
}

var fieldOrder = []string{"fullName", "enrollmentNumber", "department", "course", "semester", "validityYears", "photoUrl"}

var labels = map[string]string{
	"fullName":         "Full name",
	"enrollmentNumber": "Enrollment number",
	"department":       "Department",
	"course":           "Course",
	"semester":         "Semester",
	"validityYears":    "Validity",
	"photoUrl":         "Photo",
}

// DefaultPhotoHosts are the hosts a remote photoUrl may name.
var DefaultPhotoHosts = []string{"res.cloudinary.com"}

// Validator checks card requests. The zero value is not usable; use NewValidator.
type Validator struct {
	v          *validator.Validate
	pairing    CourseCatalog
	photoHosts []string
}

// Option configures a Validator.
type Option func(*Validator)

// WithCoursePairing rejects a course that does not belong to a known department.
// Departments missing from the catalog are not checked.
func WithCoursePairing(c CourseCatalog) Option {
	return func(v *Validator) { v.pairing = c }
}

// WithPhotoHosts replaces DefaultPhotoHosts. A listed host also admits its
// subdomains.
func WithPhotoHosts(hosts ...string) Option {
	return func(v *Validator) { v.photoHosts = hosts }
}

// NewValidator builds a validator that reports field names by their JSON tag.
func NewValidator(opts ...Option) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	out := &Validator{v: v, photoHosts: DefaultPhotoHosts}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

var defaultValidator = NewValidator()

// Validate checks a decoded JSON object with the default (loose) validator.
func Validate(input map[string]any) (Request, error) {
	return defaultValidator.Validate(input)
}

// Validate coerces input into a Request. validityYears accepts numbers and
// numeric text; every other field must be text.
func (v *Validator) Validate(input map[string]any) (Request, error) {
	var (
		req    Request
		errs   []FieldError
		failed = map[string]bool{}
	)

	text := func(field string, dst *string) {
		raw, ok := input[field]
		if !ok || raw == nil {
			return
		}
		s, isText := raw.(string)
		if !isText {
			errs = append(errs, FieldError{Field: field, Message: labels[field] + " must be text"})
			failed[field] = true
			return
		}
		*dst = strings.TrimSpace(s)
	}
	text("fullName", &req.FullName)
	text("enrollmentNumber", &req.EnrollmentNumber)
	text("department", &req.Department)
	text("course", &req.Course)
	text("semester", &req.Semester)
	text("photoUrl", &req.PhotoURL)

	years, msg := coerceYears(input["validityYears"])
	if msg != "" {
		errs = append(errs, FieldError{Field: "validityYears", Message: msg})
		failed["validityYears"] = true
	}
	req.ValidityYears = years

	for _, fe := range v.structErrors(req) {
		if !failed[fe.Field] {
			errs = append(errs, fe)
			failed[fe.Field] = true
		}
	}

	if fe, ok := v.checkPairing(req, failed); !ok {
		errs = append(errs, fe)
	}
	if fe, ok := v.checkPhoto(req, failed); !ok {
		errs = append(errs, fe)
	}

	if len(errs) > 0 {
		sortFields(errs)
		return Request{}, &ValidationError{Fields: errs}
	}
	return req, nil
}

// ValidateRequest checks an already typed request, e.g. one read from YAML.
func (v *Validator) ValidateRequest(req Request) error {
	errs := v.structErrors(req)
	failed := map[string]bool{}
	for _, fe := range errs {
		failed[fe.Field] = true
	}
	if fe, ok := v.checkPairing(req, failed); !ok {
		errs = append(errs, fe)
	}
	if fe, ok := v.checkPhoto(req, failed); !ok {
		errs = append(errs, fe)
	}
	if len(errs) == 0 {
		return nil
	}
	sortFields(errs)
	return &ValidationError{Fields: errs}
}

func (v *Validator) structErrors(req Request) []FieldError {
	err := v.v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func (v *Validator) checkPairing(req Request, failed map[string]bool) (FieldError, bool) {
	if v.pairing == nil || failed["department"] || failed["course"] {
		return FieldError{}, true
	}
	courses, known := v.pairing.CoursesFor(req.Department)
	if !known || slices.Contains(courses, req.Course) {
		return FieldError{}, true
	}
	return FieldError{
		Field:   "course",
		Message: fmt.Sprintf("Course %q is not offered by the %s department", req.Course, req.Department),
	}, false
}

// checkPhoto admits inline images and https URLs on an approved host.
func (v *Validator) checkPhoto(req Request, failed map[string]bool) (FieldError, bool) {
	ref := req.PhotoURL
	if ref == "" || failed["photoUrl"] || strings.HasPrefix(ref, "data:image/") {
		return FieldError{}, true
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme == "https" && u.User == nil &&
		assets.HostAllowed(u.Hostname(), v.photoHosts) {
		return FieldError{}, true
	}
	return FieldError{
		Field:   "photoUrl",
		Message: "Photo must be an inline image or an https URL on an approved host",
	}, false
}

func message(fe validator.FieldError) string {
	label := labels[fe.Field()]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min", "max":
		if fe.Field() == "validityYears" {
			return "Validity must be between 1 and 5 years"
		}
		return label + " is too large"
	default:
		return label + " is invalid"
	}
}

const yearsMissing = "Validity is required"

// coerceYears returns a user-facing message when raw is not a whole number.
func coerceYears(raw any) (int, string) {
	var f float64
	switch n := raw.(type) {
	case nil:
		return 0, yearsMissing
	case float64:
		f = n
	case int:
		return n, ""
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, "Validity must be a number"
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, yearsMissing
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, "Validity must be a number"
		}
		f = parsed
	default:
		return 0, "Validity must be a number"
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, "Validity must be a whole number of years"
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, "Validity must be between 1 and 5 years"
	}
	return int(f), ""
}

func sortFields(errs []FieldError) {
	slices.SortStableFunc(errs, func(a, b FieldError) int {
		return slices.Index(fieldOrder, a.Field) - slices.Index(fieldOrder, b.Field)
	})
}
