package utils

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // 注册webp解码器，商品缩略图常见此格式
)

// StripDataURLPrefix 去掉 "data:image/...;base64," 前缀
func StripDataURLPrefix(s string) string {
	if strings.HasPrefix(s, "data:image") {
		if idx := strings.IndexByte(s, ','); idx >= 0 {
			return s[idx+1:]
		}
	}
	return s
}

// DecodeBase64Image 将base64字符串（可带data URL前缀）解码为图片
func DecodeBase64Image(s string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(StripDataURLPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("解码base64失败: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

// DecodeImageBytes 解码图片字节流（用于服务端抓取的商品图）
func DecodeImageBytes(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

// Downscale 将图片长边压到maxDim以内，Catmull-Rom重采样；已满足时原样返回
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	long := max(w, h)
	if long <= maxDim {
		return img
	}
	s := float64(maxDim) / float64(long)
	return scaleTo(img, max(1, int(float64(w)*s)), max(1, int(float64(h)*s)))
}

// HashImage 图片内容哈希（PNG编码后取sha256），用于商品图去重
func HashImage(img image.Image) string {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// SheetOptions 拼接参数
type SheetOptions struct {
	Cols         int
	Tile         int
	Pad          int
	Gap          int
	RoomLongEdge int
}

// BuildStackedSheet 将房间图和商品图拼成一张图：房间在上，商品网格在下
// 商品按行优先顺序排列，每张商品图等比缩放后居中放入方格
func BuildStackedSheet(room image.Image, products []image.Image, opts SheetOptions) image.Image {
	r := Downscale(room, opts.RoomLongEdge)
	rb := r.Bounds()
	rw, rh := rb.Dx(), rb.Dy()

	var grid *image.RGBA
	gridW, gridH := 0, 0
	if len(products) > 0 {
		rows := (len(products) + opts.Cols - 1) / opts.Cols
		gridW = opts.Cols*opts.Tile + (opts.Cols+1)*opts.Pad
		gridH = rows*opts.Tile + (rows+1)*opts.Pad
		grid = newWhiteCanvas(gridW, gridH)

		for i, p := range products {
			pb := p.Bounds()
			pw, ph := pb.Dx(), pb.Dy()
			scale := 1.0
			if pw > opts.Tile || ph > opts.Tile {
				scale = float64(opts.Tile) / float64(max(pw, ph))
			}
			tw := max(1, int(float64(pw)*scale))
			th := max(1, int(float64(ph)*scale))
			tileImg := scaleTo(p, tw, th)

			row, col := i/opts.Cols, i%opts.Cols
			x := opts.Pad + col*(opts.Tile+opts.Pad) + (opts.Tile-tw)/2
			y := opts.Pad + row*(opts.Tile+opts.Pad) + (opts.Tile-th)/2
			xdraw.Draw(grid, image.Rect(x, y, x+tw, y+th), tileImg, tileImg.Bounds().Min, xdraw.Over)
		}
	}

	w := rw + 2*opts.Pad
	if grid != nil && gridW > w {
		w = gridW
	}
	h := rh + 2*opts.Pad
	if grid != nil {
		h += opts.Gap + gridH
	}

	canvas := newWhiteCanvas(w, h)
	rx := (w - rw) / 2
	xdraw.Draw(canvas, image.Rect(rx, opts.Pad, rx+rw, opts.Pad+rh), r, rb.Min, xdraw.Over)
	if grid != nil {
		gx := (w - gridW) / 2
		gy := opts.Pad + rh + opts.Gap
		xdraw.Draw(canvas, image.Rect(gx, gy, gx+gridW, gy+gridH), grid, image.Point{}, xdraw.Over)
	}
	return canvas
}

// EncodeJPEGBase64 长边压到maxLongEdge后单次JPEG编码并转base64
func EncodeJPEGBase64(img image.Image, maxLongEdge, quality int) (string, error) {
	img = Downscale(img, maxLongEdge)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("JPEG编码失败: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodePNGBase64 PNG编码并转base64
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("PNG编码失败: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func scaleTo(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

func newWhiteCanvas(w, h int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	return canvas
}
