package svgraster

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/srwiley/oksvg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

const redRect = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100">
	<rect x="0" y="0" width="200" height="100" fill="#ff0000"/>
</svg>`

func readSample(t *testing.T) []byte {
	b, err := os.ReadFile(filepath.Join("..", "assets", "sample.svg"))
	require.NoError(t, err, "can't open svg source")
	return b
}

func checkBuffer(t *testing.T, pb PixelBuffer, w, h int) {
	t.Helper()
	assert.Equal(t, w, pb.Width)
	assert.Equal(t, h, pb.Height)
	assert.Len(t, pb.Pix, w*h*4)
}

func TestScaledDimensions(t *testing.T) {
	for _, test := range []struct {
		scale float64
		w, h  int
	}{
		{1, 200, 100},
		{0.5, 100, 50},
		{0.333, 66, 33},
		{0.1, 20, 10},
		{2, 400, 200},
		{0.015, 3, 1},
	} {
		pb, err := Rasterize([]byte(redRect), test.scale)
		require.NoError(t, err, "scale %g", test.scale)
		checkBuffer(t, pb, test.w, test.h)
	}
}

func TestUnitScaleKeepsNaturalSize(t *testing.T) {
	src := readSample(t)
	w, h, err := NaturalSize(src)
	require.NoError(t, err)

	pb, err := Rasterize(src, 1)
	require.NoError(t, err)
	checkBuffer(t, pb, w, h)
}

func TestSampleImage(t *testing.T) {
	src := readSample(t)
	w, h, err := NaturalSize(src)
	require.NoError(t, err)
	assert.Equal(t, 980, w)
	assert.Equal(t, 980, h)

	pb, err := Rasterize(src, 0.1)
	require.NoError(t, err)
	checkBuffer(t, pb, 98, 98)

	// the centre of the disc is painted, the corners are transparent
	img := pb.Image()
	assert.Equal(t, uint8(0xff), img.NRGBAAt(49, 49).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A)
}

func TestPixelsAreUnmultiplied(t *testing.T) {
	pb, err := Rasterize([]byte(redRect), 0.5)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, pb.Image().NRGBAAt(50, 25))

	const translucent = `<svg xmlns="http://www.w3.org/2000/svg" width="40" height="40">
		<rect width="40" height="40" fill="#ff0000" fill-opacity="0.5"/>
	</svg>`
	pb, err = Rasterize([]byte(translucent), 1)
	require.NoError(t, err)
	c := pb.Image().NRGBAAt(20, 20)
	assert.InDelta(t, 0xff, int(c.R), 3)
	assert.InDelta(t, 0x80, int(c.A), 3)
}

func TestMalformedInput(t *testing.T) {
	for _, src := range []string{
		"",
		"   ",
		"not an svg",
		`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect`,
		`<html><body></body></html>`,
		`<svg width="10" height="10" viewBox="0 0 10"></svg>`,
		`<svg width="10furlong" height="10"></svg>`,
	} {
		pb, err := Rasterize([]byte(src), 1)
		require.Error(t, err, "input %q", src)
		assert.True(t, IsKind(err, ParseError), "input %q: %s", src, err)
		assert.ErrorIs(t, err, ErrRasterization)
		assert.Nil(t, pb.Pix)
	}
}

func TestDegenerateScale(t *testing.T) {
	for _, scale := range []float64{0.001, 0.0099, 0, -1, math.NaN(), math.Inf(1), 1e6} {
		_, err := Rasterize([]byte(redRect), scale)
		require.Error(t, err, "scale %g", scale)
		assert.True(t, IsKind(err, AllocationError), "scale %g: %s", scale, err)
	}
}

func TestDegenerateDocument(t *testing.T) {
	// no size at all
	_, err := Rasterize([]byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), 1)
	assert.True(t, IsKind(err, AllocationError), "%v", err)
}

func TestNaturalSize(t *testing.T) {
	for _, test := range []struct {
		src  string
		w, h int
	}{
		{`<svg width="30" height="40"/>`, 30, 40},
		{`<svg width="10.2px" height="0.5"/>`, 11, 1},
		{`<svg width="2in" height="10mm"/>`, 192, 38},
		{`<svg width="12pt" height="1pc"/>`, 16, 16},
		{`<svg width="100%" height="100%" viewBox="0 0 30 40"/>`, 30, 40},
		{`<svg viewBox="5,5,64,32"/>`, 64, 32},
		{`<svg width="64" viewBox="0 0 32 16"/>`, 64, 16},
		{`<?xml version="1.0" encoding="ISO-8859-1"?><!-- comment --><svg width="8" height="9"/>`, 8, 9},
	} {
		w, h, err := NaturalSize([]byte(test.src))
		require.NoError(t, err, test.src)
		assert.Equal(t, test.w, w, test.src)
		assert.Equal(t, test.h, h, test.src)
	}
}

func TestOptions(t *testing.T) {
	for _, interp := range []draw.Interpolator{draw.NearestNeighbor, draw.ApproxBiLinear, draw.CatmullRom} {
		pb, err := Rasterize([]byte(redRect), 0.25, WithInterpolator(interp))
		require.NoError(t, err)
		checkBuffer(t, pb, 50, 25)
	}

	pb, err := Rasterize([]byte(redRect), 0.25, WithDirectRender())
	require.NoError(t, err)
	checkBuffer(t, pb, 50, 25)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, pb.Image().NRGBAAt(25, 12))
}

func TestErrorMode(t *testing.T) {
	const unknown = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><blink/></svg>`
	_, err := Rasterize([]byte(unknown), 1)
	assert.NoError(t, err)

	_, err = Rasterize([]byte(unknown), 1, WithErrorMode(oksvg.StrictErrorMode))
	assert.True(t, IsKind(err, ParseError), "%v", err)
}

func TestErrorMessage(t *testing.T) {
	_, err := Rasterize([]byte(redRect), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AllocationError")
	assert.Contains(t, err.Error(), "invalid scale factor")
}
