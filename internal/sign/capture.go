package sign

import (
	"net/http"
	"strings"
	"time"
)

// DateLayout is the format written by date auto-fill (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// Capture turns one of three input modalities into a stored signing value
// for a single field: a drawn stroke path, typed text, or an uploaded image.
// Every successful capture is exactly one atomic store write; a rejected
// capture writes nothing.
type Capture struct {
	registry      *Registry
	store         *Store
	maxUploadSize int64
	now           func() time.Time
}

// NewCapture wires a capture surface to a registry and store.
func NewCapture(registry *Registry, store *Store, maxUploadSize int64) *Capture {
	return &Capture{
		registry:      registry,
		store:         store,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

func (c *Capture) field(fieldID string) (Field, error) {
	f, ok := c.registry.Field(fieldID)
	if !ok {
		return Field{}, &NotFoundError{ID: fieldID}
	}
	return f, nil
}

// ApplyDraw rasterizes a stroke path and stores it for the field. An empty
// path is rejected with a ValidationError and no write occurs.
func (c *Capture) ApplyDraw(fieldID string, strokes []Stroke) error {
	if _, err := c.field(fieldID); err != nil {
		return err
	}
	if !hasInk(strokes) {
		return newValidationError("signature drawing is empty")
	}
	png, err := renderStrokes(strokes)
	if err != nil {
		return err
	}
	c.store.Set(fieldID, ImageValue(png))
	return nil
}

// ApplyType renders typed text as a signature image and stores it.
// Empty and whitespace-only input is rejected.
func (c *Capture) ApplyType(fieldID, text string) error {
	if _, err := c.field(fieldID); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return newValidationError("signature text cannot be empty")
	}
	png, err := renderTypedSignature(text)
	if err != nil {
		return err
	}
	c.store.Set(fieldID, ImageValue(png))
	return nil
}

// ApplyUpload stores a user-provided image. Files whose MIME type does not
// start with image/ are rejected, as are oversize payloads. The image is
// re-encoded to PNG so downstream handling is uniform.
func (c *Capture) ApplyUpload(fieldID string, data []byte, mimeType string) error {
	if _, err := c.field(fieldID); err != nil {
		return err
	}
	if len(data) == 0 {
		return newValidationError("uploaded file is empty")
	}
	if c.maxUploadSize > 0 && int64(len(data)) > c.maxUploadSize {
		return newValidationError("uploaded file too large: %d bytes (max: %d bytes)",
			len(data), c.maxUploadSize)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return newValidationError("uploaded file is not an image: %s", mimeType)
	}
	png, err := reencodePNG(data)
	if err != nil {
		return newValidationError("uploaded image could not be decoded: %v", err)
	}
	c.store.Set(fieldID, ImageValue(png))
	return nil
}

// AutoFillDate writes the current date to a date field without any capture
// interaction. Non-date fields are rejected.
func (c *Capture) AutoFillDate(fieldID string) error {
	f, err := c.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != FieldDate {
		return newValidationError("field %s is %s, not a date field", fieldID, f.Type)
	}
	c.store.Set(fieldID, TextValue(c.now().Format(DateLayout)))
	return nil
}

// AutoFillName writes the signer's name to a text/name field. A blank name
// falls back to a placeholder, matching the interactive behavior.
func (c *Capture) AutoFillName(fieldID, signerName string) error {
	f, err := c.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != FieldText {
		return newValidationError("field %s is %s, not a name field", fieldID, f.Type)
	}
	signerName = strings.TrimSpace(signerName)
	if signerName == "" {
		signerName = "Signer Name"
	}
	c.store.Set(fieldID, TextValue(signerName))
	return nil
}

func hasInk(strokes []Stroke) bool {
	for _, s := range strokes {
		if len(s) > 0 {
			return true
		}
	}
	return false
}
