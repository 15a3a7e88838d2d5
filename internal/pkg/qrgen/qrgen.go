package qrgen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	defaultSize      = 300
	defaultLogoRatio = 0.3
	// logo 底衬比 logo 本身大出的像素数，保证与码点之间有留白
	logoPadding = 20
)

// Options 生成参数
type Options struct {
	Size            int     // 输出边长（像素），0 取默认值
	ForegroundColor string  // 码点颜色，十六进制
	BackgroundColor string  // 背景颜色，十六进制
	Style           string  // square / rounded / dots，未知样式回退 square
	ErrorCorrection string  // L / M / Q / H
	LogoPath        string  // 可选，居中叠加的 logo 图片
	LogoRatio       float64 // logo 相对边长的占比，0 取默认值
}

// Artifacts 一次生成的全部制品
type Artifacts struct {
	PNG []byte
	SVG []byte
	PDF []byte
}

// FilePaths 落盘后的文件路径，按短码命名
type FilePaths struct {
	PNG string
	SVG string
	PDF string
}

type Generator struct {
	storagePath string
	size        int
}

func NewGenerator(storagePath string, size int) (*Generator, error) {
	if size <= 0 {
		size = defaultSize
	}
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &Generator{storagePath: storagePath, size: size}, nil
}

// Generate 生成 PNG 制品，以及尽力而为的 SVG 与 PDF
func (g *Generator) Generate(data string, opts Options) (*Artifacts, error) {
	size := opts.Size
	if size <= 0 {
		size = g.size
	}

	q, err := qrcode.New(data, recoveryLevel(opts.ErrorCorrection))
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr data: %w", err)
	}
	matrix := q.Bitmap() // 含 4 模块静区

	fg, err := parseHexColor(opts.ForegroundColor, color.RGBA{A: 255})
	if err != nil {
		return nil, err
	}
	bg, err := parseHexColor(opts.BackgroundColor, color.RGBA{255, 255, 255, 255})
	if err != nil {
		return nil, err
	}

	img := renderMatrix(matrix, size, opts.Style, fg, bg)

	if opts.LogoPath != "" {
		ratio := opts.LogoRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = defaultLogoRatio
		}
		if err := compositeLogo(img, opts.LogoPath, ratio); err != nil {
			return nil, err
		}
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	artifacts := &Artifacts{PNG: pngBuf.Bytes()}

	// SVG 和 PDF 失败不阻断：PNG 是必须的，矢量与文档格式尽力而为
	artifacts.SVG = renderSVG(matrix, opts.ForegroundColor, opts.BackgroundColor)
	if pdfBytes, err := renderPDF(artifacts.PNG, size); err == nil {
		artifacts.PDF = pdfBytes
	}

	return artifacts, nil
}

// SaveFiles 按短码落盘全部制品，任何一个写失败即返回错误并清理已写文件
func (g *Generator) SaveFiles(shortCode string, a *Artifacts) (*FilePaths, error) {
	base := filepath.Join(g.storagePath, shortCode)
	paths := &FilePaths{PNG: base + ".png"}

	written := []string{}
	write := func(path string, data []byte) error {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := write(paths.PNG, a.PNG); err != nil {
		return nil, fmt.Errorf("failed to write png: %w", err)
	}
	if len(a.SVG) > 0 {
		paths.SVG = base + ".svg"
		if err := write(paths.SVG, a.SVG); err != nil {
			g.cleanup(written)
			return nil, fmt.Errorf("failed to write svg: %w", err)
		}
	}
	if len(a.PDF) > 0 {
		paths.PDF = base + ".pdf"
		if err := write(paths.PDF, a.PDF); err != nil {
			g.cleanup(written)
			return nil, fmt.Errorf("failed to write pdf: %w", err)
		}
	}

	return paths, nil
}

// RemoveFiles 删除短码对应的全部制品文件
func (g *Generator) RemoveFiles(shortCode string) {
	base := filepath.Join(g.storagePath, shortCode)
	for _, ext := range []string{".png", ".svg", ".pdf"} {
		_ = os.Remove(base + ext)
	}
}

func (g *Generator) cleanup(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

func recoveryLevel(ec string) qrcode.RecoveryLevel {
	switch ec {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default: // M
		return qrcode.Medium
	}
}

// renderMatrix 把模块矩阵画到 size×size 的画布上，码区居中
func renderMatrix(matrix [][]bool, size int, style string, fg, bg color.RGBA) *image.RGBA {
	n := len(matrix)
	scale := size / n
	if scale < 1 {
		scale = 1
	}
	offset := (size - scale*n) / 2

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !matrix[y][x] {
				continue
			}
			cell := image.Rect(
				offset+x*scale, offset+y*scale,
				offset+(x+1)*scale, offset+(y+1)*scale,
			)
			switch style {
			case "dots":
				fillDot(img, cell, fg)
			case "rounded":
				fillRounded(img, cell, fg, roundedCorners(matrix, x, y))
			default: // square 及未知样式
				draw.Draw(img, cell, image.NewUniform(fg), image.Point{}, draw.Src)
			}
		}
	}

	return img
}

// roundedCorners 判断四个角是否需要圆角：相邻方向没有码点的角才圆
// 顺序：左上、右上、右下、左下
func roundedCorners(matrix [][]bool, x, y int) [4]bool {
	filled := func(cx, cy int) bool {
		if cy < 0 || cy >= len(matrix) || cx < 0 || cx >= len(matrix) {
			return false
		}
		return matrix[cy][cx]
	}
	up := filled(x, y-1)
	down := filled(x, y+1)
	left := filled(x-1, y)
	right := filled(x+1, y)

	return [4]bool{
		!up && !left,
		!up && !right,
		!down && !right,
		!down && !left,
	}
}

// fillDot 在模块格子内画实心圆点
func fillDot(img *image.RGBA, cell image.Rectangle, c color.RGBA) {
	w := cell.Dx()
	cx := float64(cell.Min.X) + float64(w)/2
	cy := float64(cell.Min.Y) + float64(w)/2
	r := float64(w) / 2 * 0.9

	for py := cell.Min.Y; py < cell.Max.Y; py++ {
		for px := cell.Min.X; px < cell.Max.X; px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// fillRounded 画圆角模块，corners 指定哪些角做圆角
func fillRounded(img *image.RGBA, cell image.Rectangle, c color.RGBA, corners [4]bool) {
	w := cell.Dx()
	r := float64(w) / 3

	for py := cell.Min.Y; py < cell.Max.Y; py++ {
		for px := cell.Min.X; px < cell.Max.X; px++ {
			fx := float64(px-cell.Min.X) + 0.5
			fy := float64(py-cell.Min.Y) + 0.5
			fw := float64(w)

			inCorner := -1
			switch {
			case fx < r && fy < r:
				inCorner = 0
			case fx > fw-r && fy < r:
				inCorner = 1
			case fx > fw-r && fy > fw-r:
				inCorner = 2
			case fx < r && fy > fw-r:
				inCorner = 3
			}

			if inCorner >= 0 && corners[inCorner] {
				// 圆角区域：落在角圆弧之外的像素不画
				var ccx, ccy float64
				switch inCorner {
				case 0:
					ccx, ccy = r, r
				case 1:
					ccx, ccy = fw-r, r
				case 2:
					ccx, ccy = fw-r, fw-r
				case 3:
					ccx, ccy = r, fw-r
				}
				dx := fx - ccx
				dy := fy - ccy
				if dx*dx+dy*dy > r*r {
					continue
				}
			}
			img.SetRGBA(px, py, c)
		}
	}
}

// compositeLogo 把 logo 缩放后垫白底居中贴到码图上
func compositeLogo(img *image.RGBA, logoPath string, ratio float64) error {
	f, err := os.Open(logoPath)
	if err != nil {
		return fmt.Errorf("failed to open logo: %w", err)
	}
	defer f.Close()

	logo, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode logo: %w", err)
	}

	bounds := img.Bounds()
	side := bounds.Dx()
	if bounds.Dy() < side {
		side = bounds.Dy()
	}
	logoSize := int(float64(side) * ratio)
	scaled := scaleImage(logo, logoSize, logoSize)

	// 不透明白色底衬，略大于 logo，牺牲部分纠错冗余换取可读性
	patchSize := logoSize + logoPadding
	patchMin := image.Pt((bounds.Dx()-patchSize)/2, (bounds.Dy()-patchSize)/2)
	patch := image.Rect(patchMin.X, patchMin.Y, patchMin.X+patchSize, patchMin.Y+patchSize)
	draw.Draw(img, patch, image.NewUniform(color.White), image.Point{}, draw.Src)

	logoMin := image.Pt((bounds.Dx()-logoSize)/2, (bounds.Dy()-logoSize)/2)
	logoRect := image.Rect(logoMin.X, logoMin.Y, logoMin.X+logoSize, logoMin.Y+logoSize)
	draw.Draw(img, logoRect, scaled, image.Point{}, draw.Over)

	return nil
}

// scaleImage 最近邻缩放，logo 尺寸小，画质足够
func scaleImage(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := sb.Min.X + x*sb.Dx()/w
			sy := sb.Min.Y + y*sb.Dy()/h
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

// renderSVG 输出简单的矩形模块 SVG，样式统一按方形处理
func renderSVG(matrix [][]bool, fg, bg string) []byte {
	if fg == "" {
		fg = "#000000"
	}
	if bg == "" {
		bg = "#FFFFFF"
	}
	n := len(matrix)

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`+"\n", n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`+"\n", n, n, bg)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if matrix[y][x] {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="1" fill="%s"/>`+"\n", x, y, fg)
			}
		}
	}
	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// renderPDF 把 PNG 嵌入单页 PDF
func renderPDF(pngData []byte, size int) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(size), Ht: float64(size)},
	})
	pdf.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(pngData))
	pdf.ImageOptions("qr", 0, 0, float64(size), float64(size), false, opt, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// parseHexColor 解析 #RGB / #RRGGBB，空串取默认值
func parseHexColor(s string, fallback color.RGBA) (color.RGBA, error) {
	if s == "" {
		return fallback, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	hex := s[1:]

	var r, g, b uint8
	switch len(hex) {
	case 3:
		v, err := parseHexByte(string([]byte{hex[0], hex[0]}))
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		r = v
		if v, err = parseHexByte(string([]byte{hex[1], hex[1]})); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		g = v
		if v, err = parseHexByte(string([]byte{hex[2], hex[2]})); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		b = v
	case 6:
		var err error
		if r, err = parseHexByte(hex[0:2]); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		if g, err = parseHexByte(hex[2:4]); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		if b, err = parseHexByte(hex[4:6]); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func parseHexByte(s string) (uint8, error) {
	var v uint8
	for i := 0; i < 2; i++ {
		c := s[i]
		var d uint8
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, fmt.Errorf("invalid hex byte %q", s)
		}
		v = v<<4 | d
	}
	return v, nil
}
