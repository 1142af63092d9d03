package sign

import (
	"bytes"
	"testing"
	"unicode/utf8"
)

func TestInspectValidDocument(t *testing.T) {
	data := makeTestPDF(t, 2)
	insp := NewInspector(10 * 1024 * 1024)

	info, err := insp.Inspect("contract.pdf", data)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	if info.Name != "contract.pdf" {
		t.Errorf("name = %q, want contract.pdf", info.Name)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", info.Size, len(data))
	}
	if info.PageCount != 2 {
		t.Errorf("page count = %d, want 2", info.PageCount)
	}
	if len(info.Pages) != 2 {
		t.Fatalf("expected 2 page dims, got %d", len(info.Pages))
	}
	for i, dim := range info.Pages {
		if dim.Width != 612 || dim.Height != 792 {
			t.Errorf("page %d dims = %.0fx%.0f, want 612x792", i+1, dim.Width, dim.Height)
		}
	}
}

func TestInspectRejections(t *testing.T) {
	insp := NewInspector(1024)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("just some text")},
		{"png masquerading", testPNG(t)},
		{"oversize", bytes.Repeat([]byte{0x20}, 2048)},
		{"truncated pdf", []byte("%PDF-1.7\nnothing else")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := insp.Inspect("bad.pdf", tt.data)
			if !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestClipUTF8KeepsRuneBoundary(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"under limit untouched", "hello", 10, "hello"},
		{"ascii cut at limit", "hello world", 5, "hello"},
		{"two-byte rune not split", "aaé", 3, "aa"},
		{"cut lands on rune start", "aaéb", 4, "aaé"},
		{"three-byte rune not split", "a€x", 2, "a"},
		{"all multibyte under limit", "日本語", 9, "日本語"},
		{"all multibyte cut mid-rune", "日本語", 4, "日"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clipUTF8(tt.input, tt.limit)
			if got != tt.want {
				t.Errorf("clipUTF8(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("clipUTF8 produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestInspectDimFallback(t *testing.T) {
	info := &DocumentInfo{
		PageCount: 1,
		Pages:     []PageDim{{Width: 595, Height: 842}},
	}

	if dim := info.Dim(1); dim.Width != 595 {
		t.Errorf("page 1 width = %v, want 595", dim.Width)
	}
	// Out-of-range pages fall back to the first page's geometry.
	if dim := info.Dim(99); dim.Width != 595 {
		t.Errorf("fallback width = %v, want 595", dim.Width)
	}
	if dim := info.Dim(0); dim.Height != 842 {
		t.Errorf("fallback height = %v, want 842", dim.Height)
	}

	empty := &DocumentInfo{}
	if dim := empty.Dim(1); dim.Width != 0 || dim.Height != 0 {
		t.Error("document without pages should yield a zero dim")
	}
}
