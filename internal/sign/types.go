package sign

import (
	"encoding/base64"
	"fmt"
)

// FieldType enumerates the kinds of signable regions that can be placed on a
// page. The set is closed; anything else is rejected at the boundary.
type FieldType string

const (
	FieldSignature FieldType = "signature"
	FieldInitial   FieldType = "initial"
	FieldText      FieldType = "text"
	FieldDate      FieldType = "date"
)

// ParseFieldType converts a wire-level string into a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case FieldSignature, FieldInitial, FieldText, FieldDate:
		return FieldType(s), nil
	}
	return "", newValidationError("unknown field type: %q", s)
}

// DefaultSize returns the committed size, in viewport pixels, for a drag
// gesture too small to define its own rectangle.
func (ft FieldType) DefaultSize() (width, height float64) {
	switch ft {
	case FieldInitial:
		return 80, 50
	case FieldDate:
		return 120, 30
	default:
		return 150, 60
	}
}

// ReadOnly reports whether fields of this type are auto-filled rather than
// captured interactively.
func (ft FieldType) ReadOnly() bool {
	return ft == FieldText || ft == FieldDate
}

// Rect is a rectangle in viewport pixel space with a top-left origin and y
// increasing downward.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FractionRect is a page-relative rectangle with every component in [0,1],
// independent of display scale. Origin is top-left, matching Rect.
type FractionRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Field is a signable region attached to a single page. ID and PageNumber
// are immutable after creation; the rectangle is mutable via move/resize.
type Field struct {
	ID         string    `json:"id"`
	PageNumber int       `json:"page_number"`
	Rect       Rect      `json:"rect"`
	Type       FieldType `json:"field_type"`
	Required   bool      `json:"required"`
}

// Area is the page placement of a normalized field, in fraction space.
type Area struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// NormalizedField is the wire-format representation of a Field for remote
// submission. Names follow the pattern <type>_<n> where n counts same-typed
// fields in registry order.
type NormalizedField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	ReadOnly bool   `json:"readonly"`
	Areas    []Area `json:"areas"`
}

// ValueKind discriminates the payload of a stored signing value.
type ValueKind int

const (
	ValueImage ValueKind = iota
	ValueText
)

// Value is a captured signing value: a rasterized image for drawn, typed and
// uploaded signatures, or a plain string for auto-filled date/name fields.
type Value struct {
	Kind ValueKind
	PNG  []byte
	Text string
}

// ImageValue wraps PNG bytes as a stored value.
func ImageValue(png []byte) Value {
	return Value{Kind: ValueImage, PNG: png}
}

// TextValue wraps a plain string as a stored value.
func TextValue(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// DataURL returns an embeddable representation of the value: a base64 data
// URL for images, the raw string for text.
func (v Value) DataURL() string {
	if v.Kind == ValueText {
		return v.Text
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(v.PNG)
}

// PageDim holds the absolute size of one page in PDF units (points).
type PageDim struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a single coordinate on the drawing surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen trace of a drawn signature.
type Stroke []Point

// DocumentInfo describes a loaded PDF: page geometry plus a best-effort text
// preview used during field placement.
type DocumentInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	PageCount int       `json:"page_count"`
	Pages     []PageDim `json:"pages"`
	Preview   string    `json:"preview,omitempty"`
}

// Dim returns the dimensions of a 1-indexed page. Out-of-range page numbers
// fall back to the first page, matching the normalization behavior of the
// submission payload builder.
func (d *DocumentInfo) Dim(pageNumber int) PageDim {
	if pageNumber < 1 || pageNumber > len(d.Pages) {
		if len(d.Pages) == 0 {
			return PageDim{}
		}
		return d.Pages[0]
	}
	return d.Pages[pageNumber-1]
}

// Request/result shapes for the service layer.

type LoadDocumentRequest struct {
	Path string `json:"path"`
}

type LoadDocumentResult struct {
	Document DocumentInfo `json:"document"`
	Step     string       `json:"step"`
}

type AddFieldRequest struct {
	PageNumber int     `json:"page_number"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Type       string  `json:"field_type"`
	Optional   bool    `json:"optional"`
}

type AddFieldResult struct {
	Field Field `json:"field"`
}

type MoveFieldRequest struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type ResizeFieldRequest struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type RemoveFieldRequest struct {
	ID string `json:"id"`
}

type ListFieldsRequest struct {
	PageNumber int `json:"page_number"` // 0 lists every page
}

type ListFieldsResult struct {
	Fields []Field         `json:"fields"`
	Signed map[string]bool `json:"signed"`
}

type CaptureDrawRequest struct {
	FieldID string   `json:"field_id"`
	Strokes []Stroke `json:"strokes"`
}

type CaptureTypeRequest struct {
	FieldID string `json:"field_id"`
	Text    string `json:"text"`
}

type CaptureUploadRequest struct {
	FieldID string `json:"field_id"`
	Path    string `json:"path"`
}

type SignFieldResult struct {
	FieldID string `json:"field_id"`
	Ready   bool   `json:"ready"`
}

type StatusResult struct {
	Step        string `json:"step"`
	StepNumber  int    `json:"step_number"`
	Document    string `json:"document,omitempty"`
	PageCount   int    `json:"page_count"`
	FieldCount  int    `json:"field_count"`
	SignedCount int    `json:"signed_count"`
	Ready       bool   `json:"ready"`
}

type FinalizeLocalRequest struct {
	OutputPath string `json:"output_path"`
}

type FinalizeLocalResult struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
}

type SubmitRemoteRequest struct {
	Email string `json:"email"`
}

type SubmitRemoteResult struct {
	EmbedURL string `json:"embed_url"`
	MailSent bool   `json:"mail_sent"`
}

// String implements fmt.Stringer for quick logging of a field.
func (f Field) String() string {
	return fmt.Sprintf("Field{%s %s p%d (%.0f,%.0f %.0fx%.0f)}",
		f.ID, f.Type, f.PageNumber, f.Rect.X, f.Rect.Y, f.Rect.Width, f.Rect.Height)
}
