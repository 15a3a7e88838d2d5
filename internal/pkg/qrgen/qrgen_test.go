package qrgen

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(t.TempDir(), 300)
	require.NoError(t, err)
	return g
}

func TestGenerate_PNG(t *testing.T) {
	g := newTestGenerator(t)

	artifacts, err := g.Generate("https://example.com/s/abc123", Options{
		ForegroundColor: "#000000",
		BackgroundColor: "#FFFFFF",
		Style:           "square",
		ErrorCorrection: "M",
	})
	require.NoError(t, err)
	require.NotEmpty(t, artifacts.PNG)

	img, err := png.Decode(bytes.NewReader(artifacts.PNG))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestGenerate_AllStyles(t *testing.T) {
	g := newTestGenerator(t)

	for _, style := range []string{"square", "rounded", "dots", "unknown-style"} {
		t.Run(style, func(t *testing.T) {
			artifacts, err := g.Generate("https://example.com", Options{Style: style})
			require.NoError(t, err)
			assert.NotEmpty(t, artifacts.PNG)
		})
	}
}

func TestGenerate_BestEffortFormats(t *testing.T) {
	g := newTestGenerator(t)

	artifacts, err := g.Generate("https://example.com", Options{})
	require.NoError(t, err)

	assert.Contains(t, string(artifacts.SVG), "<svg")
	assert.True(t, bytes.HasPrefix(artifacts.PDF, []byte("%PDF")))
}

func TestGenerate_WithLogo(t *testing.T) {
	g := newTestGenerator(t)

	// 准备一个纯色 logo
	logoPath := filepath.Join(t.TempDir(), "logo.png")
	logo := newSolidPNG(t, 64, 64, color.RGBA{255, 0, 0, 255})
	require.NoError(t, os.WriteFile(logoPath, logo, 0o644))

	artifacts, err := g.Generate("https://example.com", Options{
		LogoPath:        logoPath,
		ErrorCorrection: "H",
	})
	require.NoError(t, err)

	// 中心像素应被白色底衬覆盖或为 logo 红色，不会是纯黑码点
	img, err := png.Decode(bytes.NewReader(artifacts.PNG))
	require.NoError(t, err)
	r, g2, b, _ := img.At(150, 150).RGBA()
	assert.False(t, r == 0 && g2 == 0 && b == 0)
}

func TestGenerate_InvalidColor(t *testing.T) {
	g := newTestGenerator(t)

	_, err := g.Generate("https://example.com", Options{ForegroundColor: "black"})
	assert.Error(t, err)
}

func TestSaveFiles(t *testing.T) {
	g := newTestGenerator(t)

	artifacts, err := g.Generate("https://example.com", Options{})
	require.NoError(t, err)

	paths, err := g.SaveFiles("abc123", artifacts)
	require.NoError(t, err)

	assert.FileExists(t, paths.PNG)
	assert.FileExists(t, paths.SVG)
	assert.FileExists(t, paths.PDF)

	g.RemoveFiles("abc123")
	assert.NoFileExists(t, paths.PNG)
	assert.NoFileExists(t, paths.PDF)
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#1A2b3C", color.RGBA{})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x1a, 0x2b, 0x3c, 255}, c)

	c, err = parseHexColor("#fff", color.RGBA{})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, c)

	// 空串取默认值
	c, err = parseHexColor("", color.RGBA{1, 2, 3, 255})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, c)

	_, err = parseHexColor("123456", color.RGBA{})
	assert.Error(t, err)

	_, err = parseHexColor("#12345", color.RGBA{})
	assert.Error(t, err)
}

func newSolidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
