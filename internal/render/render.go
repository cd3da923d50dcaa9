// Package render lays out the two-sided library card and serialises it as a
// PDF. Rendering never fails because of a bad asset: a missing photo, an
// undecodable logo or an unencodable barcode degrades that one element and is
// reported in Result.Notes.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"librarycard/internal/barcode"
	"librarycard/internal/card"
	"librarycard/internal/catalog"
)

// Card elements that can degrade.
const (
	ElementLogo      = "logo"
	ElementPhoto     = "photo"
	ElementBarcode   = "barcode"
	ElementWatermark = "watermark"
)

// Note records why an element was substituted.
type Note struct {
	Element string `json:"element"`
	Reason  string `json:"reason"`
}

// Result is a rendered two-page card.
type Result struct {
	PDF          []byte
	Filename     string
	BarcodeValue string
	IssueDate    time.Time
	ValidUntil   time.Time
	Pages        int
	Notes        []Note
}

// DataURI encodes the document for direct download.
func (r *Result) DataURI() string {
	return "data:application/pdf;filename=" + r.Filename + ";base64," +
		base64.StdEncoding.EncodeToString(r.PDF)
}

// Degraded reports whether element was substituted.
func (r *Result) Degraded(element string) bool {
	for _, n := range r.Notes {
		if n.Element == element {
			return true
		}
	}
	return false
}

// Renderer is safe for concurrent use; it keeps no per-card state.
type Renderer struct {
	inst     Institution
	now      func() time.Time
	code     func(department string, issued time.Time) string
	sym      barcode.Symbology
	compress bool
	dpi      float64
	log      *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithInstitution replaces the issuer details.
func WithInstitution(inst Institution) Option {
	return func(r *Renderer) { r.inst = inst }
}

// WithClock fixes the issue date source.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithRandom seeds fallback barcode generation.
func WithRandom(src *rand.Rand) Option {
	var mu sync.Mutex
	return func(r *Renderer) {
		r.code = func(department string, issued time.Time) string {
			mu.Lock()
			defer mu.Unlock()
			return barcode.StudentCode(src, catalog.DepartmentCode(department), issued.Year())
		}
	}
}

// WithSymbology swaps the barcode encoder.
func WithSymbology(s barcode.Symbology) Option {
	return func(r *Renderer) { r.sym = s }
}

// WithCompression toggles page stream compression.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// WithLogger sets the logger used for degradation warnings.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// New builds a renderer for the default institution.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		inst:     DefaultInstitution(),
		now:      time.Now,
		sym:      barcode.Code128{},
		compress: true,
		dpi:      300,
		log:      zap.NewNop(),
	}
	global := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	WithRandom(global)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// job carries the state of one Render call.
type job struct {
	req    card.Request
	pdf    *fpdf.Fpdf
	tr     func(string) string
	notes  []Note
	issue  time.Time
	expiry time.Time
	code   string
}

func (j *job) degrade(element, format string, args ...any) {
	j.notes = append(j.notes, Note{Element: element, Reason: fmt.Sprintf(format, args...)})
}

// Inputs are the raw assets for one card. PhotoErr and LogoErr carry the
// reason an asset could not be fetched and become the degradation note.
type Inputs struct {
	Photo    []byte
	Logo     []byte
	PhotoErr error
	LogoErr  error
}

// Render lays out the front and back faces and serialises them. photo and
// logo may be nil or malformed. The only error is a serialisation failure.
func (r *Renderer) Render(req card.Request, photo, logo []byte) (*Result, error) {
	return r.RenderWith(req, Inputs{Photo: photo, Logo: logo})
}

// RenderWith is Render with fetch failures reported alongside the assets.
func (r *Renderer) RenderWith(req card.Request, in Inputs) (*Result, error) {
	j := &job{req: req, issue: r.now()}
	j.expiry = card.ValidUntil(j.issue, req.ValidityYears)
	j.pdf = fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: cardWidth, Ht: cardHeight},
	})
	j.pdf.SetCompression(r.compress)
	j.pdf.SetMargins(0, 0, 0)
	j.pdf.SetAutoPageBreak(false, 0)
	j.pdf.SetTitle(r.inst.Title+" - "+req.FullName, true)
	j.pdf.SetCreator(r.inst.Name+" "+r.inst.Subunit, true)
	j.tr = j.pdf.UnicodeTranslatorFromDescriptor("")

	assets := r.prepareAssets(j, in)
	r.layoutFront(j, assets)
	r.layoutBack(j, assets)
	out, err := r.serialize(j)
	if err != nil {
		return nil, err
	}
	for _, n := range j.notes {
		r.log.Warn("card element degraded",
			zap.String("element", n.Element),
			zap.String("reason", n.Reason),
			zap.String("enrollment_number", req.EnrollmentNumber))
	}
	return out, nil
}

func (r *Renderer) serialize(j *job) (*Result, error) {
	if err := j.pdf.Error(); err != nil {
		return nil, fmt.Errorf("render: layout: %w", err)
	}
	pages := j.pdf.PageCount()
	var buf bytes.Buffer
	if err := j.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: serialize: %w", err)
	}
	return &Result{
		PDF:          buf.Bytes(),
		Filename:     card.Filename(j.req.FullName),
		BarcodeValue: j.code,
		IssueDate:    j.issue,
		ValidUntil:   j.expiry,
		Pages:        pages,
		Notes:        j.notes,
	}, nil
}

// barcodeFor encodes the enrollment number, falling back to a generated
// code, then one retry with a fresh code. An empty value means no barcode.
func (r *Renderer) barcodeFor(j *job) (string, []bool) {
	value := strings.TrimSpace(j.req.EnrollmentNumber)
	if value == "" {
		value = r.code(j.req.Department, j.issue)
		j.degrade(ElementBarcode, "enrollment number is empty, generated %s", value)
	}
	modules, err := r.sym.Encode(value)
	if err == nil {
		return value, modules
	}
	retry := r.code(j.req.Department, j.issue)
	j.degrade(ElementBarcode, "cannot encode %q (%v), retrying with %s", value, err, retry)
	modules, err = r.sym.Encode(retry)
	if err == nil {
		return retry, modules
	}
	j.degrade(ElementBarcode, "cannot encode %q (%v), barcode left blank", retry, err)
	return "", nil
}
