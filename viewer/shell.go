// Package viewer displays a rasterized SVG document as a single
// textured rectangle. The windowing backend is abstracted by the
// Uploader and Canvas interfaces; see package ebitenview for
// the desktop implementation.
package viewer

import (
	"errors"
	"image"
	"image/color"

	"github.com/benoitkugler/svgview/svgraster"
)

// ErrFramework wraps failures reported by the windowing backend.
var ErrFramework = errors.New("viewer: framework error")

// TextureState is the state of the GPU copy of the image.
type TextureState uint8

const (
	TextureNotLoaded TextureState = iota
	TextureLoaded
)

func (s TextureState) String() string {
	switch s {
	case TextureNotLoaded:
		return "TextureNotLoaded"
	case TextureLoaded:
		return "TextureLoaded"
	default:
		return "<unknown TextureState>"
	}
}

// Texture is an opaque handle to an uploaded image.
type Texture interface {
	// Size returns the texture dimensions, in pixels.
	Size() (w, h int)
}

// Uploader creates textures from pixel buffers.
type Uploader interface {
	UploadTexture(buf svgraster.PixelBuffer) (Texture, error)
}

// UV is a rectangle in normalized texture coordinates.
type UV struct{ U0, V0, U1, V1 float64 }

// FullUV spans the whole texture.
var FullUV = UV{0, 0, 1, 1}

// Quad is a textured rectangle draw command.
type Quad struct {
	Dst  image.Rectangle // screen rectangle
	UV   UV
	Tint color.Color // multiplied with the texture colours
}

// Canvas receives the draw commands of one frame.
type Canvas interface {
	Fill(c color.Color)
	DrawQuad(t Texture, q Quad)
}

// Shell owns the pixel buffer and its texture.
// It is driven by the backend frame callbacks and is not safe
// for concurrent use.
type Shell struct {
	buf      svgraster.PixelBuffer
	settings Settings

	state   TextureState
	texture Texture
	frames  int
}

// NewShell returns a shell displaying `buf` with the given settings.
func NewShell(buf svgraster.PixelBuffer, settings Settings) *Shell {
	return &Shell{buf: buf, settings: settings}
}

// State returns the current texture state.
func (sh *Shell) State() TextureState { return sh.state }

// Frames returns the number of Update calls so far.
func (sh *Shell) Frames() int { return sh.frames }

// Texture returns the uploaded texture, or nil before the first frame.
func (sh *Shell) Texture() Texture { return sh.texture }

// Update must be called once per frame, before Draw.
// The first call uploads the pixel buffer; a failed upload leaves
// the shell in TextureNotLoaded and returns the error.
func (sh *Shell) Update(up Uploader) error {
	sh.frames++
	if sh.state == TextureLoaded {
		return nil
	}
	tex, err := up.UploadTexture(sh.buf)
	if err != nil {
		return err
	}
	sh.texture = tex
	sh.state = TextureLoaded
	return nil
}

// Draw fills the background and, once the texture is loaded,
// draws it at the configured offset, at its pixel size.
func (sh *Shell) Draw(c Canvas) {
	c.Fill(sh.settings.Background)
	if sh.state != TextureLoaded {
		return
	}
	c.DrawQuad(sh.texture, sh.quad())
}

func (sh *Shell) quad() Quad {
	w, h := sh.texture.Size()
	origin := sh.settings.Offset.image()
	return Quad{
		Dst:  image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))},
		UV:   FullUV,
		Tint: sh.settings.Tint,
	}
}

// Load rasterizes the SVG document `src` with the settings scale
// and returns a shell displaying it.
func Load(src []byte, settings Settings) (*Shell, error) {
	buf, err := svgraster.Rasterize(src, settings.Scale, svgraster.WithInterpolator(settings.Interp()))
	if err != nil {
		return nil, err
	}
	return NewShell(buf, settings), nil
}
