// Package ebitenview runs a viewer.Shell inside an Ebitengine window.
package ebitenview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/benoitkugler/svgview/svgraster"
	"github.com/benoitkugler/svgview/viewer"
)

var (
	_ viewer.Uploader = uploader{}
	_ viewer.Canvas   = canvas{}
	_ ebiten.Game     = (*Game)(nil)
)

type texture struct{ img *ebiten.Image }

func (t texture) Size() (w, h int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

type uploader struct{}

func (uploader) UploadTexture(buf svgraster.PixelBuffer) (viewer.Texture, error) {
	if buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("empty pixel buffer %dx%d", buf.Width, buf.Height)
	}
	return texture{img: ebiten.NewImageFromImage(buf.Image())}, nil
}

type canvas struct{ screen *ebiten.Image }

func (c canvas) Fill(col color.Color) { c.screen.Fill(col) }

func (c canvas) DrawQuad(t viewer.Texture, q viewer.Quad) {
	tex, ok := t.(texture)
	if !ok {
		return
	}
	src, geoM, ok := quadGeometry(tex.img.Bounds(), q)
	if !ok {
		return
	}
	op := &ebiten.DrawImageOptions{GeoM: geoM}
	op.Filter = ebiten.FilterLinear
	if q.Tint != nil {
		op.ColorScale.ScaleWithColor(q.Tint)
	}
	c.screen.DrawImage(tex.img.SubImage(src).(*ebiten.Image), op)
}

// quadGeometry returns the texture region selected by the quad UV
// and the transform placing that region onto the quad destination.
// ok is false when there is nothing to draw.
func quadGeometry(bounds image.Rectangle, q viewer.Quad) (src image.Rectangle, geoM ebiten.GeoM, ok bool) {
	src = image.Rect(
		bounds.Min.X+int(math.Round(q.UV.U0*float64(bounds.Dx()))),
		bounds.Min.Y+int(math.Round(q.UV.V0*float64(bounds.Dy()))),
		bounds.Min.X+int(math.Round(q.UV.U1*float64(bounds.Dx()))),
		bounds.Min.Y+int(math.Round(q.UV.V1*float64(bounds.Dy()))),
	).Intersect(bounds)
	if src.Empty() || q.Dst.Empty() {
		return image.Rectangle{}, ebiten.GeoM{}, false
	}
	// sub images are drawn with their top left corner at the origin
	geoM.Scale(float64(q.Dst.Dx())/float64(src.Dx()), float64(q.Dst.Dy())/float64(src.Dy()))
	geoM.Translate(float64(q.Dst.Min.X), float64(q.Dst.Min.Y))
	return src, geoM, true
}

// Game adapts a viewer.Shell to the ebiten.Game interface.
type Game struct {
	shell  *viewer.Shell
	logger *slog.Logger
}

// NewGame returns a game driving `shell`. A nil logger uses slog.Default.
func NewGame(shell *viewer.Shell, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{shell: shell, logger: logger}
}

// Update is called by ebiten once per tick.
func (g *Game) Update() error {
	before := g.shell.State()
	if err := g.shell.Update(uploader{}); err != nil {
		return fmt.Errorf("%w: uploading texture: %v", viewer.ErrFramework, err)
	}
	if before != g.shell.State() {
		w, h := g.shell.Texture().Size()
		g.logger.Debug("texture uploaded", "width", w, "height", h, "frame", g.shell.Frames())
	}
	return nil
}

// Draw is called by ebiten once per frame.
func (g *Game) Draw(screen *ebiten.Image) {
	g.shell.Draw(canvas{screen: screen})
}

// Layout keeps a one to one mapping with the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed.
// A normal close returns nil.
func Run(shell *viewer.Shell, settings viewer.Settings, logger *slog.Logger) error {
	ebiten.SetWindowTitle(settings.Title)
	ebiten.SetWindowSize(settings.Window.Width, settings.Window.Height)

	game := NewGame(shell, logger)
	game.logger.Info("opening window", "title", settings.Title,
		"width", settings.Window.Width, "height", settings.Window.Height)
	err := ebiten.RunGame(game)
	if err == nil || errors.Is(err, ebiten.Termination) {
		return nil
	}
	if errors.Is(err, viewer.ErrFramework) {
		return err
	}
	return fmt.Errorf("%w: %v", viewer.ErrFramework, err)
}
