package svgraster

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// This file resolves the intrinsic size of a document, from
// the width, height and viewBox attributes of its root element.

const fontSize = 16 // used to resolve em and ex lengths

// px per unit, at 96 DPI
var unitToPx = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 4.0 / 3.0,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
	"em": fontSize,
	"ex": fontSize / 2,
}

var errNoRoot = errors.New("missing root svg element")

// rootSize holds the sizing attributes of the <svg> element.
type rootSize struct {
	width, height float64 // in px, zero when missing or relative
	viewBox       Bounds
	hasViewBox    bool
	aspect        aspectRatio
}

// Bounds is a rectangle in user units.
type Bounds struct{ X, Y, W, H float64 }

// size returns the document size, before rounding.
func (r rootSize) size() (w, h float64) {
	w, h = r.width, r.height
	if w == 0 {
		w = r.viewBox.W
	}
	if h == 0 {
		h = r.viewBox.H
	}
	return w, h
}

// readRootSize decodes the first start element, which must be <svg>.
func readRootSize(src []byte) (rootSize, error) {
	decoder := xml.NewDecoder(bytes.NewReader(src))
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err == io.EOF {
			return rootSize{}, errNoRoot
		}
		if err != nil {
			return rootSize{}, err
		}
		se, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "svg" {
			return rootSize{}, errNoRoot
		}
		return parseRootAttrs(se.Attr)
	}
}

func parseRootAttrs(attrs []xml.Attr) (out rootSize, err error) {
	out.aspect = defaultAspectRatio
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "width":
			out.width, err = parseLength(attr.Value)
		case "height":
			out.height, err = parseLength(attr.Value)
		case "viewBox":
			out.viewBox, err = parseViewBox(attr.Value)
			out.hasViewBox = true
		case "preserveAspectRatio":
			out.aspect, err = parseAspectRatio(attr.Value)
		}
		if err != nil {
			return rootSize{}, err
		}
	}
	return out, nil
}

// parseLength converts an absolute length to px.
// Percentages and "auto" resolve to 0, meaning the viewBox is used instead.
func parseLength(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "auto" || strings.HasSuffix(v, "%") {
		return 0, nil
	}
	i := len(v)
	for i > 0 && isUnitLetter(v[i-1]) {
		i--
	}
	factor, ok := unitToPx[strings.ToLower(v[i:])]
	if !ok {
		return 0, errors.New("unsupported length unit in " + strconv.Quote(v))
	}
	f, err := strconv.ParseFloat(v[:i], 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("invalid length " + strconv.Quote(v))
	}
	return f * factor, nil
}

func isUnitLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func parseViewBox(v string) (Bounds, error) {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return Bounds{}, errors.New("viewBox expects 4 numbers, got " + strconv.Quote(v))
	}
	var nums [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Bounds{}, err
		}
		nums[i] = n
	}
	return Bounds{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, nil
}

// maxNaturalDimension bounds the document size, so that
// it always fits in an int.
const maxNaturalDimension = 1 << 24

// NaturalSize returns the size in whole pixels of the document `src`
// at scale 1. Fractional sizes are rounded up.
func NaturalSize(src []byte) (w, h int, err error) {
	root, err := readRootSize(src)
	if err != nil {
		return 0, 0, &Error{Kind: ParseError, Err: err}
	}
	return root.naturalSize()
}

func (r rootSize) naturalSize() (w, h int, err error) {
	fw, fh := r.size()
	if fw > maxNaturalDimension || fh > maxNaturalDimension {
		return 0, 0, newError(AllocationError, "natural size %gx%g exceeds %d pixels", fw, fh, maxNaturalDimension)
	}
	return int(math.Ceil(fw)), int(math.Ceil(fh)), nil
}
