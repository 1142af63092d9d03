package sign

import (
	"fmt"

	"github.com/google/uuid"
)

// minDragSize is the drag threshold, in viewport pixels, below which a
// committed rectangle dimension is replaced by the field type's default.
const minDragSize = 20.0

// Registry is the ordered collection of fields placed on a document. Order
// is insertion order and is significant: normalized field names are derived
// from it. Mutations notify subscribed observers synchronously with a
// consistent copy of the field list.
type Registry struct {
	fields    []Field
	store     *Store
	observers []func([]Field)
}

// NewRegistry creates an empty registry. Removing a field cascades to the
// given store so no orphaned signing value survives its field.
func NewRegistry(store *Store) *Registry {
	return &Registry{store: store}
}

// Subscribe registers an observer called after every mutation.
func (r *Registry) Subscribe(fn func(fields []Field)) {
	r.observers = append(r.observers, fn)
}

func (r *Registry) notify() {
	if len(r.observers) == 0 {
		return
	}
	snapshot := r.Fields()
	for _, fn := range r.observers {
		fn(snapshot)
	}
}

// normalizeDraft flips a rectangle dragged from any corner so that (x,y) is
// always the top-left and both dimensions are non-negative.
func normalizeDraft(rect Rect) Rect {
	if rect.Width < 0 {
		rect.X += rect.Width
		rect.Width = -rect.Width
	}
	if rect.Height < 0 {
		rect.Y += rect.Height
		rect.Height = -rect.Height
	}
	if rect.X < 0 {
		rect.X = 0
	}
	if rect.Y < 0 {
		rect.Y = 0
	}
	return rect
}

// AddField commits a draft rectangle as a field on the given page. Any
// dimension below the drag threshold is replaced by the type's default size
// rather than rejecting the gesture.
func (r *Registry) AddField(pageNumber int, draft Rect, ft FieldType, required bool) (Field, error) {
	if pageNumber < 1 {
		return Field{}, newValidationError("page number must be positive, got %d", pageNumber)
	}
	if _, err := ParseFieldType(string(ft)); err != nil {
		return Field{}, err
	}

	rect := normalizeDraft(draft)
	defW, defH := ft.DefaultSize()
	if rect.Width < minDragSize {
		rect.Width = defW
	}
	if rect.Height < minDragSize {
		rect.Height = defH
	}

	f := Field{
		ID:         uuid.NewString(),
		PageNumber: pageNumber,
		Rect:       rect,
		Type:       ft,
		Required:   required,
	}
	r.fields = append(r.fields, f)
	r.notify()
	return f, nil
}

func (r *Registry) index(id string) int {
	for i := range r.fields {
		if r.fields[i].ID == id {
			return i
		}
	}
	return -1
}

// Field returns the field with the given id.
func (r *Registry) Field(id string) (Field, bool) {
	i := r.index(id)
	if i < 0 {
		return Field{}, false
	}
	return r.fields[i], true
}

// MoveField repositions a field. An unknown id yields a NotFoundError and no
// mutation.
func (r *Registry) MoveField(id string, x, y float64) error {
	i := r.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	r.fields[i].Rect.X = x
	r.fields[i].Rect.Y = y
	r.notify()
	return nil
}

// ResizeField replaces a field's rectangle. The new dimensions must be
// strictly positive; the page assignment never changes.
func (r *Registry) ResizeField(id string, rect Rect) error {
	i := r.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return newValidationError("field dimensions must be positive, got %.2fx%.2f",
			rect.Width, rect.Height)
	}
	r.fields[i].Rect = normalizeDraft(rect)
	r.notify()
	return nil
}

// RemoveField deletes a field and its signing value.
func (r *Registry) RemoveField(id string) error {
	i := r.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	r.fields = append(r.fields[:i], r.fields[i+1:]...)
	r.store.Delete(id)
	r.notify()
	return nil
}

// Fields returns a copy of all fields in insertion order.
func (r *Registry) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// FieldsForPage returns the fields on one page, preserving insertion order.
func (r *Registry) FieldsForPage(pageNumber int) []Field {
	var out []Field
	for _, f := range r.fields {
		if f.PageNumber == pageNumber {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of committed fields.
func (r *Registry) Len() int {
	return len(r.fields)
}

// Clear drops every field. The store is cleared separately on session reset.
func (r *Registry) Clear() {
	r.fields = nil
	r.notify()
}

// Normalized produces the wire-format field list for remote submission.
// Coordinates are normalized against each field's page dimensions in PDF
// points. Names are <type>_<n> with n counting same-typed fields up to and
// including each field in registry order, so deleting a field renumbers the
// survivors on the next call.
func (r *Registry) Normalized(doc *DocumentInfo) ([]NormalizedField, error) {
	if doc == nil {
		return nil, newValidationError("no document loaded")
	}
	counts := make(map[FieldType]int)
	out := make([]NormalizedField, 0, len(r.fields))
	for _, f := range r.fields {
		counts[f.Type]++
		dim := doc.Dim(f.PageNumber)
		frac, err := ToFraction(f.Rect, dim.Width, dim.Height)
		if err != nil {
			return nil, err
		}
		out = append(out, NormalizedField{
			Name:     fmt.Sprintf("%s_%d", f.Type, counts[f.Type]),
			Type:     string(f.Type),
			Required: f.Required,
			ReadOnly: f.Type.ReadOnly(),
			Areas: []Area{{
				Page: f.PageNumber,
				X:    frac.X,
				Y:    frac.Y,
				W:    frac.W,
				H:    frac.H,
			}},
		})
	}
	return out, nil
}
