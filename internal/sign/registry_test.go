package sign

import (
	"testing"
)

func newTestRegistry() (*Registry, *Store) {
	store := NewStore()
	return NewRegistry(store), store
}

func TestAddFieldDefaultSizes(t *testing.T) {
	tests := []struct {
		name       string
		fieldType  FieldType
		draft      Rect
		wantWidth  float64
		wantHeight float64
	}{
		{"tiny signature drag", FieldSignature, Rect{X: 10, Y: 10, Width: 5, Height: 5}, 150, 60},
		{"tiny initial drag", FieldInitial, Rect{X: 10, Y: 10, Width: 3, Height: 3}, 80, 50},
		{"tiny date drag", FieldDate, Rect{X: 10, Y: 10, Width: 0, Height: 0}, 120, 30},
		{"tiny text drag", FieldText, Rect{X: 10, Y: 10, Width: 1, Height: 1}, 150, 60},
		{"deliberate drag keeps its size", FieldSignature, Rect{X: 10, Y: 10, Width: 200, Height: 80}, 200, 80},
		{"width below threshold only", FieldSignature, Rect{X: 10, Y: 10, Width: 12, Height: 90}, 150, 90},
		{"height below threshold only", FieldSignature, Rect{X: 10, Y: 10, Width: 90, Height: 12}, 90, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry()
			f, err := reg.AddField(1, tt.draft, tt.fieldType, true)
			if err != nil {
				t.Fatalf("AddField failed: %v", err)
			}
			if f.Rect.Width != tt.wantWidth {
				t.Errorf("width = %v, want %v", f.Rect.Width, tt.wantWidth)
			}
			if f.Rect.Height != tt.wantHeight {
				t.Errorf("height = %v, want %v", f.Rect.Height, tt.wantHeight)
			}
		})
	}
}

func TestAddFieldNormalizesInvertedDrag(t *testing.T) {
	reg, _ := newTestRegistry()

	// Dragged up-left from (100,100): negative width and height.
	f, err := reg.AddField(1, Rect{X: 100, Y: 100, Width: -60, Height: -40}, FieldSignature, true)
	if err != nil {
		t.Fatalf("AddField failed: %v", err)
	}
	if f.Rect.X != 40 || f.Rect.Y != 60 {
		t.Errorf("expected top-left (40,60), got (%v,%v)", f.Rect.X, f.Rect.Y)
	}
	if f.Rect.Width != 60 || f.Rect.Height != 40 {
		t.Errorf("expected 60x40, got %vx%v", f.Rect.Width, f.Rect.Height)
	}
}

func TestAddFieldRejectsBadInput(t *testing.T) {
	reg, _ := newTestRegistry()

	if _, err := reg.AddField(0, Rect{}, FieldSignature, true); !IsValidation(err) {
		t.Errorf("expected validation error for page 0, got %v", err)
	}
	if _, err := reg.AddField(1, Rect{}, FieldType("checkbox"), true); !IsValidation(err) {
		t.Errorf("expected validation error for unknown type, got %v", err)
	}
}

func TestFieldsPreserveInsertionOrder(t *testing.T) {
	reg, _ := newTestRegistry()

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		f, err := reg.AddField(1, Rect{X: float64(i * 50), Y: 10, Width: 100, Height: 40}, FieldSignature, true)
		if err != nil {
			t.Fatalf("AddField failed: %v", err)
		}
		ids = append(ids, f.ID)
	}

	fields := reg.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	for i, f := range fields {
		if f.ID != ids[i] {
			t.Errorf("field %d out of order", i)
		}
	}
}

func TestMoveAndResizeField(t *testing.T) {
	reg, _ := newTestRegistry()
	f, _ := reg.AddField(1, Rect{X: 10, Y: 10, Width: 100, Height: 40}, FieldSignature, true)

	if err := reg.MoveField(f.ID, 200, 300); err != nil {
		t.Fatalf("MoveField failed: %v", err)
	}
	moved, _ := reg.Field(f.ID)
	if moved.Rect.X != 200 || moved.Rect.Y != 300 {
		t.Errorf("expected (200,300), got (%v,%v)", moved.Rect.X, moved.Rect.Y)
	}
	if moved.Rect.Width != 100 || moved.Rect.Height != 40 {
		t.Error("move should not change dimensions")
	}

	// Moving off the page clamps to the origin.
	if err := reg.MoveField(f.ID, -5, -5); err != nil {
		t.Fatalf("MoveField failed: %v", err)
	}
	moved, _ = reg.Field(f.ID)
	if moved.Rect.X != 0 || moved.Rect.Y != 0 {
		t.Errorf("expected clamp to origin, got (%v,%v)", moved.Rect.X, moved.Rect.Y)
	}

	if err := reg.ResizeField(f.ID, Rect{X: 5, Y: 5, Width: 180, Height: 70}); err != nil {
		t.Fatalf("ResizeField failed: %v", err)
	}
	resized, _ := reg.Field(f.ID)
	if resized.Rect.Width != 180 || resized.Rect.Height != 70 {
		t.Errorf("expected 180x70, got %vx%v", resized.Rect.Width, resized.Rect.Height)
	}

	if err := reg.ResizeField(f.ID, Rect{Width: 0, Height: 50}); !IsValidation(err) {
		t.Errorf("expected validation error for zero width, got %v", err)
	}
}

func TestMutationsOnUnknownField(t *testing.T) {
	reg, _ := newTestRegistry()

	if err := reg.MoveField("missing", 1, 1); !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if err := reg.ResizeField("missing", Rect{Width: 10, Height: 10}); !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if err := reg.RemoveField("missing"); !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRemoveFieldCascadesToStore(t *testing.T) {
	reg, store := newTestRegistry()
	f, _ := reg.AddField(1, Rect{X: 10, Y: 10, Width: 100, Height: 40}, FieldSignature, true)
	other, _ := reg.AddField(1, Rect{X: 10, Y: 100, Width: 100, Height: 40}, FieldSignature, true)

	store.Set(f.ID, ImageValue([]byte{1}))
	store.Set(other.ID, ImageValue([]byte{2}))

	if err := reg.RemoveField(f.ID); err != nil {
		t.Fatalf("RemoveField failed: %v", err)
	}

	if store.Has(f.ID) {
		t.Error("removing a field must delete its signing value")
	}
	if !store.Has(other.ID) {
		t.Error("other field's value must survive")
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 remaining field, got %d", reg.Len())
	}
}

func TestNormalizedNames(t *testing.T) {
	reg, _ := newTestRegistry()
	doc := &DocumentInfo{
		Name:      "test.pdf",
		PageCount: 2,
		Pages:     []PageDim{{Width: 612, Height: 792}, {Width: 612, Height: 792}},
	}

	sig1, _ := reg.AddField(1, Rect{X: 10, Y: 10, Width: 100, Height: 40}, FieldSignature, true)
	_, _ = reg.AddField(1, Rect{X: 10, Y: 60, Width: 120, Height: 30}, FieldDate, true)
	_, _ = reg.AddField(2, Rect{X: 10, Y: 10, Width: 100, Height: 40}, FieldSignature, true)

	normalized, err := reg.Normalized(doc)
	if err != nil {
		t.Fatalf("Normalized failed: %v", err)
	}
	if len(normalized) != 3 {
		t.Fatalf("expected 3 normalized fields, got %d", len(normalized))
	}

	wantNames := []string{"signature_1", "date_1", "signature_2"}
	for i, want := range wantNames {
		if normalized[i].Name != want {
			t.Errorf("field %d name = %q, want %q", i, normalized[i].Name, want)
		}
	}

	if !normalized[1].ReadOnly {
		t.Error("date fields must be readonly in the payload")
	}
	if normalized[0].ReadOnly {
		t.Error("signature fields must not be readonly")
	}
	if normalized[2].Areas[0].Page != 2 {
		t.Errorf("expected page 2, got %d", normalized[2].Areas[0].Page)
	}

	// Deleting the first signature renumbers the survivor.
	if err := reg.RemoveField(sig1.ID); err != nil {
		t.Fatalf("RemoveField failed: %v", err)
	}
	normalized, err = reg.Normalized(doc)
	if err != nil {
		t.Fatalf("Normalized failed: %v", err)
	}
	if normalized[1].Name != "signature_1" {
		t.Errorf("surviving signature should renumber to signature_1, got %q", normalized[1].Name)
	}
}

func TestNormalizedStableAcrossCalls(t *testing.T) {
	reg, _ := newTestRegistry()
	doc := &DocumentInfo{PageCount: 1, Pages: []PageDim{{Width: 612, Height: 792}}}

	_, _ = reg.AddField(1, Rect{X: 10, Y: 10, Width: 100, Height: 40}, FieldSignature, true)
	_, _ = reg.AddField(1, Rect{X: 10, Y: 60, Width: 100, Height: 40}, FieldSignature, true)

	first, err := reg.Normalized(doc)
	if err != nil {
		t.Fatalf("Normalized failed: %v", err)
	}
	second, err := reg.Normalized(doc)
	if err != nil {
		t.Fatalf("Normalized failed: %v", err)
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Errorf("name %d changed between calls: %q vs %q", i, first[i].Name, second[i].Name)
		}
	}
}

func TestRegistryObservers(t *testing.T) {
	reg, _ := newTestRegistry()

	var calls int
	var lastLen int
	reg.Subscribe(func(fields []Field) {
		calls++
		lastLen = len(fields)
	})

	f, _ := reg.AddField(1, Rect{X: 10, Y: 10, Width: 100, Height: 40}, FieldSignature, true)
	_ = reg.MoveField(f.ID, 50, 50)
	_ = reg.RemoveField(f.ID)

	if calls != 3 {
		t.Errorf("expected 3 notifications, got %d", calls)
	}
	if lastLen != 0 {
		t.Errorf("last notification should carry 0 fields, got %d", lastLen)
	}
}
