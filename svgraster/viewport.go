package svgraster

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
)

// This file maps the document viewBox onto the pixel surface,
// following the preserveAspectRatio attribute.

// aspectRatio is a parsed preserveAspectRatio attribute.
// alignX and alignY are 0 for min, 0.5 for mid and 1 for max.
type aspectRatio struct {
	alignX, alignY float64
	none           bool // scale each axis independently
	slice          bool // cover the viewport instead of fitting in it
}

// xMidYMid meet
var defaultAspectRatio = aspectRatio{alignX: 0.5, alignY: 0.5}

var alignFactors = map[string]float64{"min": 0, "mid": 0.5, "max": 1}

func parseAspectRatio(v string) (aspectRatio, error) {
	fields := strings.Fields(v)
	if len(fields) > 0 && fields[0] == "defer" { // only meaningful on <image>
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return aspectRatio{}, errors.New("invalid preserveAspectRatio " + strconv.Quote(v))
	}
	out := defaultAspectRatio
	if len(fields) == 2 {
		switch fields[1] {
		case "meet":
		case "slice":
			out.slice = true
		default:
			return aspectRatio{}, errors.New("invalid preserveAspectRatio " + strconv.Quote(v))
		}
	}
	align := fields[0]
	if align == "none" {
		out.none = true
		return out, nil
	}
	// xMinYMin, xMidYMax, ...
	if len(align) != 8 || align[0] != 'x' || align[4] != 'Y' {
		return aspectRatio{}, errors.New("invalid preserveAspectRatio " + strconv.Quote(v))
	}
	ax, okX := alignFactors[strings.ToLower(align[1:4])]
	ay, okY := alignFactors[strings.ToLower(align[5:8])]
	if !okX || !okY {
		return aspectRatio{}, errors.New("invalid preserveAspectRatio " + strconv.Quote(v))
	}
	out.alignX, out.alignY = ax, ay
	return out, nil
}

// userSpace returns the rectangle in user units shown by the document:
// its viewBox, or the document size in px when there is none.
func (r rootSize) userSpace() Bounds {
	if r.hasViewBox {
		return r.viewBox
	}
	w, h := r.size()
	return Bounds{W: w, H: h}
}

// viewTransform returns the matrix mapping user units to a viewport
// of w x h pixels.
func viewTransform(vb Bounds, aspect aspectRatio, w, h float64) (rasterx.Matrix2D, error) {
	if !(vb.W > 0) || !(vb.H > 0) || math.IsInf(vb.W, 0) || math.IsInf(vb.H, 0) {
		return rasterx.Matrix2D{}, errors.New("degenerate viewBox " +
			strconv.FormatFloat(vb.W, 'g', -1, 64) + "x" + strconv.FormatFloat(vb.H, 'g', -1, 64))
	}
	sx, sy := w/vb.W, h/vb.H
	var tx, ty float64
	if !aspect.none {
		s := math.Min(sx, sy)
		if aspect.slice {
			s = math.Max(sx, sy)
		}
		sx, sy = s, s
		tx = (w - vb.W*s) * aspect.alignX
		ty = (h - vb.H*s) * aspect.alignY
	}
	return rasterx.Identity.Translate(tx, ty).Scale(sx, sy).Translate(-vb.X, -vb.Y), nil
}
