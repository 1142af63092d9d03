package sign

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
)

// Compositor stamps captured signing values onto the pages of the original
// document and re-serializes it. Fields without a stored value are skipped.
// A single value that fails to decode is skipped and composition continues;
// a document-level parse or serialize failure aborts the whole operation so
// no corrupt output is ever emitted.
type Compositor struct{}

// NewCompositor creates a compositor.
func NewCompositor() *Compositor {
	return &Compositor{}
}

// Compose imports every page of the original document, draws each satisfied
// field's image at its placement rectangle, and returns the new document
// bytes.
func (c *Compositor) Compose(original []byte, fields []Field, values map[string]Value, pages []PageDim) (out []byte, err error) {
	if len(original) == 0 {
		return nil, &CompositionError{Op: "load", Err: fmt.Errorf("document is empty")}
	}
	if len(pages) == 0 {
		return nil, &CompositionError{Op: "load", Err: fmt.Errorf("no page geometry available")}
	}

	// The page importer panics on malformed input rather than returning an
	// error; convert that into a CompositionError.
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &CompositionError{Op: "import", Err: fmt.Errorf("%v", r)}
		}
	}()

	doc := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(original))

	byPage := make(map[int][]Field)
	for _, f := range fields {
		byPage[f.PageNumber] = append(byPage[f.PageNumber], f)
	}

	for pageNum := 1; pageNum <= len(pages); pageNum++ {
		dim := pages[pageNum-1]
		doc.AddPageFormat("P", fpdf.SizeType{Wd: dim.Width, Ht: dim.Height})

		tpl := importer.ImportPageFromStream(doc, &rs, pageNum, "/MediaBox")
		importer.UseImportedTemplate(doc, tpl, 0, 0, dim.Width, 0)

		for _, f := range byPage[pageNum] {
			value, ok := values[f.ID]
			if !ok {
				continue
			}
			png, stampErr := stampImage(value)
			if stampErr != nil {
				// Skip this field, keep stamping the rest.
				continue
			}
			placement := Placement(f.Rect, dim)
			name := "sig_" + f.ID
			doc.RegisterImageOptionsReader(name,
				fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
			// Placement.Y is the stamp's bottom edge in the PDF's
			// bottom-left-origin space; the drawing surface wants the top
			// edge measured from the top of the page.
			drawY := dim.Height - placement.Y - placement.Height
			doc.ImageOptions(name, placement.X, drawY, placement.Width, placement.Height,
				false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}

	if doc.Err() {
		return nil, &CompositionError{Op: "stamp", Err: doc.Error()}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, &CompositionError{Op: "save", Err: err}
	}
	return buf.Bytes(), nil
}

// stampImage resolves a stored value to PNG bytes ready for embedding. Text
// values are rasterized through the same renderer as typed signatures so
// every stamp goes down the one image path.
func stampImage(v Value) ([]byte, error) {
	if v.Kind == ValueText {
		return renderTypedSignature(v.Text)
	}
	if !decodableImage(v.PNG) {
		return nil, fmt.Errorf("stored image is not decodable")
	}
	return v.PNG, nil
}
