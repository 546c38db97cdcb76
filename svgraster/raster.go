// Implements the rasterization of SVG documents into
// plain RGBA pixel buffers, by wrapping oksvg and rasterx.
package svgraster

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// MaxDimension is the largest side, in pixels, of a surface Rasterize
// allocates. Bigger documents are only accepted when scaled down.
const MaxDimension = 1 << 14

// PixelBuffer is a rasterized image, with 4 bytes per pixel
// in unmultiplied RGBA order. Rows are stored contiguously.
type PixelBuffer struct {
	Width, Height int
	Pix           []byte
}

// Bounds returns the rectangle (0, 0, Width, Height).
func (pb PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, pb.Width, pb.Height)
}

// Image returns a view of the buffer sharing its pixels.
func (pb PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{Pix: pb.Pix, Stride: 4 * pb.Width, Rect: pb.Bounds()}
}

type config struct {
	interpolator draw.Interpolator
	errMode      oksvg.ErrorMode
	direct       bool
}

// Option customizes Rasterize.
type Option func(*config)

// WithInterpolator sets the kernel used to resample the natural size
// rendering to the target size. The default is draw.BiLinear.
func WithInterpolator(interp draw.Interpolator) Option {
	return func(c *config) { c.interpolator = interp }
}

// WithErrorMode is forwarded to the SVG parser. The default
// ignores unsupported elements.
func WithErrorMode(mode oksvg.ErrorMode) Option {
	return func(c *config) { c.errMode = mode }
}

// WithDirectRender renders the document at the target size,
// skipping the resampling step.
func WithDirectRender() Option {
	return func(c *config) { c.direct = true }
}

// Rasterize parses the SVG document `src`, renders it at its natural size
// and resamples the result by `scale`, which must be strictly positive.
// The returned buffer is (floor(w*scale), floor(h*scale)) where (w, h)
// is given by NaturalSize.
// Documents larger than MaxDimension are rendered directly at the
// target size.
// Errors are always of type *Error.
func Rasterize(src []byte, scale float64, opts ...Option) (PixelBuffer, error) {
	cfg := config{interpolator: draw.BiLinear, errMode: oksvg.IgnoreErrorMode}
	for _, opt := range opts {
		opt(&cfg)
	}

	icon, err := parse(src, cfg.errMode)
	if err != nil {
		return PixelBuffer{}, err
	}
	root, err := readRootSize(src)
	if err != nil {
		return PixelBuffer{}, &Error{Kind: ParseError, Err: err}
	}
	w, h, err := root.naturalSize()
	if err != nil {
		return PixelBuffer{}, err
	}

	sw, sh, err := scaledSize(w, h, scale)
	if err != nil {
		return PixelBuffer{}, err
	}
	if sw <= 0 || sh <= 0 {
		return PixelBuffer{}, newError(AllocationError, "failed to create pixmap of size %dx%d", sw, sh)
	}

	if cfg.direct || w > MaxDimension || h > MaxDimension {
		out, err := allocate(sw, sh)
		if err != nil {
			return PixelBuffer{}, err
		}
		if err = render(icon, root, out, scale); err != nil {
			return PixelBuffer{}, err
		}
		return toPixelBuffer(out), nil
	}

	natural, err := allocate(w, h)
	if err != nil {
		return PixelBuffer{}, err
	}
	if err = render(icon, root, natural, 1); err != nil {
		return PixelBuffer{}, err
	}

	scaled, err := allocate(sw, sh)
	if err != nil {
		return PixelBuffer{}, err
	}
	resample(cfg.interpolator, scaled, natural, scale)
	return toPixelBuffer(scaled), nil
}

func parse(src []byte, mode oksvg.ErrorMode) (*oksvg.SvgIcon, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, newError(ParseError, "empty document")
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(src), mode)
	if err != nil {
		return nil, &Error{Kind: ParseError, Err: err}
	}
	return icon, nil
}

// scaledSize truncates the scaled dimensions toward zero.
func scaledSize(w, h int, scale float64) (int, int, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 0, 0, newError(AllocationError, "invalid scale factor %g", scale)
	}
	fw, fh := math.Floor(float64(w)*scale), math.Floor(float64(h)*scale)
	if fw > MaxDimension || fh > MaxDimension {
		return 0, 0, newError(AllocationError, "scaled size %gx%g exceeds %d pixels", fw, fh, MaxDimension)
	}
	return int(fw), int(fh), nil
}

func allocate(w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return nil, newError(AllocationError, "failed to create pixmap of size %dx%d", w, h)
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// render draws the icon into `img`, with the document viewport
// scaled by `scale`.
func render(icon *oksvg.SvgIcon, root rootSize, img *image.RGBA, scale float64) (err error) {
	vb := root.userSpace()
	dw, dh := root.size()
	m, err := viewTransform(vb, root.aspect, dw*scale, dh*scale)
	if err != nil {
		return &Error{Kind: RenderError, Err: err}
	}
	icon.ViewBox.X, icon.ViewBox.Y, icon.ViewBox.W, icon.ViewBox.H = vb.X, vb.Y, vb.W, vb.H
	icon.Transform = m

	defer func() {
		if r := recover(); r != nil {
			err = newError(RenderError, "failed to render svg: %v", r)
		}
	}()
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return nil
}

// resample maps `src` onto `dst` with a pure scaling transform.
func resample(interp draw.Interpolator, dst, src *image.RGBA, scale float64) {
	m := f64.Aff3{
		scale, 0, 0,
		0, scale, 0,
	}
	interp.Transform(dst, m, src, src.Bounds(), draw.Over, nil)
}

// toPixelBuffer converts premultiplied pixels to unmultiplied RGBA.
func toPixelBuffer(img *image.RGBA) PixelBuffer {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return PixelBuffer{Width: b.Dx(), Height: b.Dy(), Pix: out.Pix}
}

func (pb PixelBuffer) String() string {
	return fmt.Sprintf("PixelBuffer(%dx%d)", pb.Width, pb.Height)
}
