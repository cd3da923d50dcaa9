package render

import (
	"bytes"
	"image"

	"github.com/go-pdf/fpdf"

	"librarycard/internal/barcode"
	"librarycard/internal/card"
	"librarycard/internal/imaging"
)

// ID-1 card footprint in millimetres.
const (
	cardWidth  = 85.6
	cardHeight = 54.0
)

type box struct{ x, y, w, h float64 }

// Front face template.
var (
	logoBox    = box{4, 3, 11, 11}
	photoBox   = box{4, 19.5, 13, 16}
	barcodeBox = box{21, 33, 40, 7}
	headerX    = 17.5
	identityX  = 21.0
	validityX  = 55.0
)

// Back face template.
var (
	watermarkBox   = box{(cardWidth - 30) / 2, (cardHeight - 30) / 2, 30, 30}
	instructionTop = 11.0
	instructionGap = 4.2
	signatureRule  = box{62, 47, 18, 0}
)

const watermarkOpacity = 0.1

var (
	black       = RGB{0, 0, 0}
	placeholder = RGB{220, 220, 220}
	muted       = RGB{150, 150, 150}
)

const (
	imgLogo      = "logo"
	imgPhoto     = "photo"
	imgWatermark = "watermark"
)

// assets records which images were embedded in the document.
type assets struct {
	logo, photo, watermark bool
}

func (r *Renderer) prepareAssets(j *job, in Inputs) assets {
	var a assets
	photo, logo := in.Photo, in.Logo

	if len(logo) == 0 && in.LogoErr != nil {
		j.degrade(ElementLogo, "logo unavailable: %v", in.LogoErr)
		j.degrade(ElementWatermark, "logo unavailable: %v", in.LogoErr)
	} else if len(logo) == 0 {
		j.degrade(ElementLogo, "logo asset unavailable")
		j.degrade(ElementWatermark, "logo asset unavailable")
	} else if img, err := imaging.Decode(logo); err != nil {
		j.degrade(ElementLogo, "%v", err)
		j.degrade(ElementWatermark, "%v", err)
	} else {
		px := imaging.PixelsFor(logoBox.w, r.dpi)
		a.logo = r.embed(j, ElementLogo, imgLogo, imaging.ScaleToBox(img, px, px))
		wpx := imaging.PixelsFor(watermarkBox.w, r.dpi/2)
		faded := imaging.ApplyOpacity(imaging.ScaleToBox(img, wpx, wpx), watermarkOpacity)
		a.watermark = r.embed(j, ElementWatermark, imgWatermark, faded)
	}

	if len(photo) == 0 && in.PhotoErr != nil {
		j.degrade(ElementPhoto, "photo unavailable: %v", in.PhotoErr)
	} else if len(photo) == 0 {
		j.degrade(ElementPhoto, "no photo provided")
	} else if img, err := imaging.Decode(photo); err != nil {
		j.degrade(ElementPhoto, "%v", err)
	} else {
		w, h := imaging.PixelsFor(photoBox.w, r.dpi), imaging.PixelsFor(photoBox.h, r.dpi)
		a.photo = r.embed(j, ElementPhoto, imgPhoto, imaging.ScaleToBox(img, w, h))
	}
	return a
}

// embed registers img under name. A failure is cleared from the document so
// the rest of the layout is unaffected.
func (r *Renderer) embed(j *job, element, name string, img image.Image) bool {
	data, err := imaging.EncodeEmbeddable(img)
	if err != nil {
		j.degrade(element, "%v", err)
		return false
	}
	j.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
	if err := j.pdf.Error(); err != nil {
		j.pdf.ClearError()
		j.degrade(element, "embed image: %v", err)
		return false
	}
	return true
}

func (j *job) image(name string, b box) {
	j.pdf.ImageOptions(name, b.x, b.y, b.w, b.h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (j *job) text(x, y float64, style string, size float64, c RGB, s string) {
	j.pdf.SetFont("Helvetica", style, size)
	j.pdf.SetTextColor(c.R, c.G, c.B)
	j.pdf.Text(x, y, j.tr(s))
}

// centred writes s horizontally centred in [x, x+w].
func (j *job) centred(x, w, y float64, style string, size float64, c RGB, s string) {
	j.pdf.SetFont("Helvetica", style, size)
	j.pdf.SetTextColor(c.R, c.G, c.B)
	s = j.tr(s)
	j.pdf.Text(x+(w-j.pdf.GetStringWidth(s))/2, y, s)
}

// layoutFront draws identity, photo, barcode and dates.
func (r *Renderer) layoutFront(j *job, a assets) {
	pdf := j.pdf
	pdf.AddPage()
	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(0, 0, cardWidth, cardHeight, "F")

	if a.logo {
		j.image(imgLogo, logoBox)
	}
	j.text(headerX, 6.5, "B", 9, black, r.inst.Name)
	j.text(headerX, 10, "", 6, black, r.inst.Address)
	j.text(headerX, 13.5, "B", 7.5, black, r.inst.Subunit)
	j.text(headerX, 17.5, "B", 7.5, r.inst.Accent, r.inst.Title)

	if a.photo {
		j.image(imgPhoto, photoBox)
	} else {
		pdf.SetFillColor(placeholder.R, placeholder.G, placeholder.B)
		pdf.Rect(photoBox.x, photoBox.y, photoBox.w, photoBox.h, "F")
		j.centred(photoBox.x, photoBox.w, photoBox.y+photoBox.h/2+0.8, "", 5, muted, "No Photo")
	}
	j.text(photoBox.x, photoBox.y+photoBox.h+3, "", 4.5, black, j.req.EnrollmentNumber)

	j.text(identityX, 23.5, "B", 7, black, j.req.FullName)
	j.text(identityX, 27.5, "", 5.5, black, j.req.Course+" Student")
	j.text(identityX, 31, "", 5, black, "Dept. of "+j.req.Department)

	j.code = r.drawBarcode(j)

	j.text(identityX, 47.5, "", 5, r.inst.Accent, "Date of issue")
	j.text(validityX, 47.5, "", 5, r.inst.Accent, "Validity")
	j.text(identityX, 51, "", 6, black, card.FormatDate(j.issue))
	j.text(validityX, 51, "", 6, black, card.FormatDate(j.expiry))
}

// drawBarcode renders bars as filled rectangles with the code beneath.
func (r *Renderer) drawBarcode(j *job) string {
	value, modules := r.barcodeFor(j)
	if len(modules) == 0 {
		return ""
	}
	pdf := j.pdf
	module := barcodeBox.w / float64(len(modules))
	pdf.SetFillColor(black.R, black.G, black.B)
	for _, bar := range barcode.Bars(modules) {
		pdf.Rect(barcodeBox.x+float64(bar.Start)*module, barcodeBox.y, float64(bar.Width)*module, barcodeBox.h, "F")
	}
	j.centred(barcodeBox.x, barcodeBox.w, barcodeBox.y+barcodeBox.h+2.3, "", 5, black, value)
	return value
}

// layoutBack draws the watermark first so the instructions sit above it.
func (r *Renderer) layoutBack(j *job, a assets) {
	pdf := j.pdf
	pdf.AddPage()
	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(0, 0, cardWidth, cardHeight, "F")

	if a.watermark {
		j.image(imgWatermark, watermarkBox)
	}

	j.text(4, 6.5, "B", 7, black, "Instruction:")
	for i, line := range r.inst.Instructions {
		j.text(4, instructionTop+float64(i)*instructionGap, "", 4.6, black, line)
	}

	pdf.SetDrawColor(black.R, black.G, black.B)
	pdf.SetLineWidth(0.15)
	pdf.Line(signatureRule.x, signatureRule.y, signatureRule.x+signatureRule.w, signatureRule.y)
	j.centred(signatureRule.x, signatureRule.w, signatureRule.y+3, "", 5, black, r.inst.SignatureLabel)
}
