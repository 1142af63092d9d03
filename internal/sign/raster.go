package sign

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	// Canvas for typed signatures, matching the capture surface.
	typedCanvasWidth  = 400
	typedCanvasHeight = 150
	typedFontSize     = 48

	// Canvas for drawn signatures.
	drawCanvasWidth  = 400
	drawCanvasHeight = 176
	penWidth         = 2.5
)

var (
	italicFaceOnce sync.Once
	italicFace     font.Face
	italicFaceErr  error
)

func typedFace() (font.Face, error) {
	italicFaceOnce.Do(func() {
		ft, err := opentype.Parse(goitalic.TTF)
		if err != nil {
			italicFaceErr = fmt.Errorf("failed to parse signature font: %w", err)
			return
		}
		italicFace, italicFaceErr = opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    typedFontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return italicFace, italicFaceErr
}

// renderTypedSignature rasterizes text onto a white canvas of fixed
// dimensions, centered, in an italic script-styled face.
func renderTypedSignature(text string) ([]byte, error) {
	face, err := typedFace()
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, typedCanvasWidth, typedCanvasHeight))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
	}
	advance := d.MeasureString(text)
	metrics := face.Metrics()
	d.Dot = fixed.Point26_6{
		X: (fixed.I(typedCanvasWidth) - advance) / 2,
		Y: (fixed.I(typedCanvasHeight) + metrics.Ascent - metrics.Descent) / 2,
	}
	d.DrawString(text)

	return encodePNG(dst)
}

// renderStrokes rasterizes pen strokes onto a transparent canvas. Each
// segment is drawn as an anti-aliased quad of penWidth thickness; isolated
// points become square dots so a tap still leaves a mark.
func renderStrokes(strokes []Stroke) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, drawCanvasWidth, drawCanvasHeight))
	r := vector.NewRasterizer(drawCanvasWidth, drawCanvasHeight)
	r.DrawOp = draw.Over

	half := float32(penWidth / 2)
	for _, stroke := range strokes {
		if len(stroke) == 1 {
			p := stroke[0]
			addQuad(r,
				float32(p.X)-half, float32(p.Y)-half,
				float32(p.X)+half, float32(p.Y)-half,
				float32(p.X)+half, float32(p.Y)+half,
				float32(p.X)-half, float32(p.Y)+half)
			continue
		}
		for i := 1; i < len(stroke); i++ {
			p0, p1 := stroke[i-1], stroke[i]
			dx, dy := p1.X-p0.X, p1.Y-p0.Y
			length := math.Hypot(dx, dy)
			if length == 0 {
				continue
			}
			// Unit normal scaled to half the pen width.
			nx := float32(-dy / length * penWidth / 2)
			ny := float32(dx / length * penWidth / 2)
			addQuad(r,
				float32(p0.X)+nx, float32(p0.Y)+ny,
				float32(p1.X)+nx, float32(p1.Y)+ny,
				float32(p1.X)-nx, float32(p1.Y)-ny,
				float32(p0.X)-nx, float32(p0.Y)-ny)
		}
	}

	r.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{})
	return encodePNG(dst)
}

func addQuad(r *vector.Rasterizer, x0, y0, x1, y1, x2, y2, x3, y3 float32) {
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.LineTo(x2, y2)
	r.LineTo(x3, y3)
	r.ClosePath()
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// reencodePNG decodes an uploaded image (PNG, JPEG or GIF) and re-encodes it
// as PNG so every stored image shares one format.
func reencodePNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return encodePNG(img)
}

// decodableImage reports whether the bytes parse as a supported image.
func decodableImage(data []byte) bool {
	_, _, err := image.Decode(bytes.NewReader(data))
	return err == nil
}
