package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBase64(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestStripDataURLPrefix(t *testing.T) {
	assert.Equal(t, "abc123", StripDataURLPrefix("data:image/png;base64,abc123"))
	assert.Equal(t, "abc123", StripDataURLPrefix("abc123"))
	assert.Equal(t, "data:image/png;base64", StripDataURLPrefix("data:image/png;base64"))
}

func TestDecodeBase64Image(t *testing.T) {
	src := solidImage(8, 6, color.RGBA{200, 100, 50, 255})
	b64 := pngBase64(t, src)

	img, err := DecodeBase64Image(b64)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	// 带data URL前缀同样可解
	img, err = DecodeBase64Image("data:image/png;base64," + b64)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestDecodeBase64ImageErrors(t *testing.T) {
	_, err := DecodeBase64Image("not base64!!!")
	assert.Error(t, err)

	_, err = DecodeBase64Image(base64.StdEncoding.EncodeToString([]byte("not an image")))
	assert.Error(t, err)
}

func TestDownscale(t *testing.T) {
	big := solidImage(1000, 500, color.White)
	small := Downscale(big, 100)
	assert.Equal(t, 100, small.Bounds().Dx())
	assert.Equal(t, 50, small.Bounds().Dy())

	// 已经在限制内的图片原样返回
	ok := solidImage(80, 40, color.White)
	assert.Equal(t, ok, Downscale(ok, 100))
}

func TestHashImageDistinguishesContent(t *testing.T) {
	a := solidImage(10, 10, color.RGBA{255, 0, 0, 255})
	b := solidImage(10, 10, color.RGBA{0, 0, 255, 255})
	a2 := solidImage(10, 10, color.RGBA{255, 0, 0, 255})

	assert.Equal(t, HashImage(a), HashImage(a2))
	assert.NotEqual(t, HashImage(a), HashImage(b))
}

func TestBuildStackedSheetGeometry(t *testing.T) {
	opts := SheetOptions{Cols: 4, Tile: 100, Pad: 6, Gap: 10, RoomLongEdge: 400}
	room := solidImage(400, 300, color.RGBA{10, 20, 30, 255})
	products := []image.Image{
		solidImage(200, 200, color.White),
		solidImage(120, 240, color.White),
		solidImage(50, 50, color.White),
		solidImage(300, 100, color.White),
		solidImage(140, 140, color.White),
	}

	sheet := BuildStackedSheet(room, products, opts)

	// 网格：5件商品4列 → 2行
	gridW := 4*100 + 5*6  // 430
	gridH := 2*100 + 3*6  // 218
	wantW := gridW        // 网格比房间(400+12)宽
	wantH := (300 + 2*6) + 10 + gridH

	assert.Equal(t, wantW, sheet.Bounds().Dx())
	assert.Equal(t, wantH, sheet.Bounds().Dy())
}

// 没有商品时只输出带边距的房间图
func TestBuildStackedSheetRoomOnly(t *testing.T) {
	opts := SheetOptions{Cols: 4, Tile: 100, Pad: 6, Gap: 10, RoomLongEdge: 400}
	room := solidImage(200, 100, color.RGBA{10, 20, 30, 255})

	sheet := BuildStackedSheet(room, nil, opts)
	assert.Equal(t, 212, sheet.Bounds().Dx())
	assert.Equal(t, 112, sheet.Bounds().Dy())
}

// 房间图长边超限时先压缩再拼接
func TestBuildStackedSheetDownscalesRoom(t *testing.T) {
	opts := SheetOptions{Cols: 4, Tile: 100, Pad: 6, Gap: 10, RoomLongEdge: 200}
	room := solidImage(800, 400, color.RGBA{10, 20, 30, 255})

	sheet := BuildStackedSheet(room, nil, opts)
	assert.Equal(t, 200+2*6, sheet.Bounds().Dx())
	assert.Equal(t, 100+2*6, sheet.Bounds().Dy())
}

func TestEncodeJPEGBase64Roundtrip(t *testing.T) {
	src := solidImage(600, 300, color.RGBA{120, 130, 140, 255})
	b64, err := EncodeJPEGBase64(src, 300, 70)
	require.NoError(t, err)

	img, err := DecodeBase64Image(b64)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}
