package sign

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const previewLimit = 500

// Inspector validates uploaded PDF bytes and reports page geometry. It is
// the session's page geometry provider: every page's absolute width and
// height in points comes from here.
type Inspector struct {
	maxFileSize int64
}

// NewInspector creates an inspector with the given size cap.
func NewInspector(maxFileSize int64) *Inspector {
	return &Inspector{maxFileSize: maxFileSize}
}

// Inspect validates the document and returns its geometry plus a best-effort
// text preview of the first pages. Invalid input yields a ValidationError.
func (i *Inspector) Inspect(name string, data []byte) (*DocumentInfo, error) {
	if len(data) == 0 {
		return nil, newValidationError("document is empty")
	}
	if i.maxFileSize > 0 && int64(len(data)) > i.maxFileSize {
		return nil, newValidationError("file too large: %d bytes (max: %d bytes)",
			len(data), i.maxFileSize)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, newValidationError("file is not a PDF")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, newValidationError("invalid PDF file: %v", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, newValidationError("cannot determine page count: %v", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	pages := make([]PageDim, len(dims))
	for n, d := range dims {
		pages[n] = PageDim{Width: d.Width, Height: d.Height}
	}

	return &DocumentInfo{
		Name:      name,
		Size:      int64(len(data)),
		PageCount: ctx.PageCount,
		Pages:     pages,
		Preview:   textPreview(data),
	}, nil
}

// textPreview extracts a short plain-text excerpt for display while fields
// are being placed. Extraction failures are not fatal; scanned documents
// simply preview empty.
func textPreview(data []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(content)
		if builder.Len() >= previewLimit {
			break
		}
	}

	return strings.TrimSpace(clipUTF8(builder.String(), previewLimit))
}

// clipUTF8 cuts s to at most limit bytes without splitting a rune.
func clipUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
