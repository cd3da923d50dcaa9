// Package barcode encodes enrollment numbers as linear barcodes.
package barcode

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/boombuler/barcode/code128"
)

// Symbology turns content into a module pattern: true is a dark bar module.
type Symbology interface {
	Encode(content string) ([]bool, error)
}

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("barcode: empty content")

// Code128 encodes CODE128 with start/stop symbols and the mod-103 checksum.
type Code128 struct{}

func (Code128) Encode(content string) ([]bool, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	bc, err := code128.Encode(content)
	if err != nil {
		return nil, fmt.Errorf("barcode: code128: %w", err)
	}
	b := bc.Bounds()
	modules := make([]bool, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		r, g, bl, _ := bc.At(x, b.Min.Y).RGBA()
		modules[x-b.Min.X] = r == 0 && g == 0 && bl == 0
	}
	return modules, nil
}

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// StudentCode returns a fallback identifier: a number in 1000-9999, the
// department code and the two-digit issue year (e.g. 4821BOT24). Only A-Z
// and 0-9 are kept from dept; three random letters stand in when none remain.
func StudentCode(r *rand.Rand, dept string, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", 1000+r.IntN(9000))
	n := b.Len()
	for _, c := range strings.ToUpper(dept) {
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	if b.Len() == n {
		for i := 0; i < 3; i++ {
			b.WriteByte(letters[r.IntN(len(letters))])
		}
	}
	fmt.Fprintf(&b, "%02d", (year%100+100)%100)
	return b.String()
}

// Bar is a run of dark modules.
type Bar struct {
	Start, Width int
}

// Bars collapses a module pattern into dark runs.
func Bars(modules []bool) []Bar {
	var out []Bar
	for i := 0; i < len(modules); {
		if !modules[i] {
			i++
			continue
		}
		j := i
		for j < len(modules) && modules[j] {
			j++
		}
		out = append(out, Bar{Start: i, Width: j - i})
		i = j
	}
	return out
}
