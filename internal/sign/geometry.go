package sign

import "math"

// ReferenceViewportWidth is the pixel width the page surface is assumed to
// be rendered at when fields are placed. It equals the point width of a US
// Letter page, so a Letter document rendered at this width maps 1:1 between
// viewport pixels and PDF points. Other page sizes scale proportionally off
// their actual point width.
const ReferenceViewportWidth = 612.0

// fractionDigits is the precision kept when converting to fraction space.
const fractionDigits = 4

func roundFraction(v float64) float64 {
	pow := math.Pow10(fractionDigits)
	return math.Round(v*pow) / pow
}

// ToFraction converts a viewport-pixel rectangle to page-relative fractions
// in [0,1]. The origin stays top-left; no axis is flipped here, which keeps
// the representation usable both for remote submission and for local
// compositing.
func ToFraction(r Rect, pageWidthPx, pageHeightPx float64) (FractionRect, error) {
	if pageWidthPx <= 0 || pageHeightPx <= 0 {
		return FractionRect{}, newValidationError(
			"page dimensions must be positive, got %.2fx%.2f", pageWidthPx, pageHeightPx)
	}
	return FractionRect{
		X: roundFraction(r.X / pageWidthPx),
		Y: roundFraction(r.Y / pageHeightPx),
		W: roundFraction(r.Width / pageWidthPx),
		H: roundFraction(r.Height / pageHeightPx),
	}, nil
}

// ToPixels is the inverse of ToFraction. Round-tripping a rectangle through
// both is exact up to the retained fraction precision.
func ToPixels(f FractionRect, pageWidthPx, pageHeightPx float64) (Rect, error) {
	if pageWidthPx <= 0 || pageHeightPx <= 0 {
		return Rect{}, newValidationError(
			"page dimensions must be positive, got %.2fx%.2f", pageWidthPx, pageHeightPx)
	}
	return Rect{
		X:      f.X * pageWidthPx,
		Y:      f.Y * pageHeightPx,
		Width:  f.W * pageWidthPx,
		Height: f.H * pageHeightPx,
	}, nil
}

// Placement converts a viewport-pixel rectangle into absolute PDF units on
// the given page, flipping the vertical axis from the viewport's top-left
// origin to the PDF's bottom-left origin. The returned Y is the bottom edge
// of the stamp.
func Placement(r Rect, page PageDim) Rect {
	scale := page.Width / ReferenceViewportWidth
	return Rect{
		X:      r.X * scale,
		Y:      page.Height - (r.Y+r.Height)*scale,
		Width:  r.Width * scale,
		Height: r.Height * scale,
	}
}
