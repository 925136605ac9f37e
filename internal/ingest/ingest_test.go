package ingest_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"eightd/internal/ingest"
)

const docXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>D1 Team</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">  D3:   WIP </w:t></w:r><w:r><w:t>checked</w:t></w:r></w:p>
<w:p></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Owner</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Li</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p></w:p></w:tc><w:tc><w:p></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Due</w:t></w:r></w:p></w:tc><w:tc><w:p></w:p></w:tc></w:tr>
</w:tbl>
<w:p><w:r><w:t>D8 closed</w:t></w:r></w:p>
<w:sectPr/>
</w:body>
</w:document>`

func makeDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestReadDocx(t *testing.T) {
	data := makeDocx(t, map[string]string{"word/document.xml": docXML})
	doc, err := ingest.ReadDocx(data)
	if err != nil {
		t.Fatalf("ReadDocx: %v", err)
	}
	want := []string{"D1 Team", "D3: WIP checked", "Owner | Li", "Due", "D8 closed"}
	if diff := cmp.Diff(want, doc.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if doc.ParagraphCount != 4 {
		t.Errorf("ParagraphCount = %d, want 4", doc.ParagraphCount)
	}
}

const mergedXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:tbl>
<w:tr>
<w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>D3 Containment</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Qty</w:t></w:r></w:p></w:tc>
</w:tr>
<w:tr>
<w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr><w:p><w:r><w:t>WIP</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>held</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>340</w:t></w:r></w:p></w:tc>
</w:tr>
<w:tr>
<w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p></w:p></w:tc>
<w:tc><w:p><w:r><w:t>sorted</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>0/340</w:t></w:r></w:p></w:tc>
</w:tr>
</w:tbl>
</w:body>
</w:document>`

func TestReadDocx_MergedCellsRepeat(t *testing.T) {
	data := makeDocx(t, map[string]string{"word/document.xml": mergedXML})
	doc, err := ingest.ReadDocx(data)
	if err != nil {
		t.Fatalf("ReadDocx: %v", err)
	}
	want := []string{
		"D3 Containment | D3 Containment | Qty",
		"WIP | held | 340",
		"WIP | sorted | 0/340",
	}
	if diff := cmp.Diff(want, doc.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDocx_MissingPart(t *testing.T) {
	data := makeDocx(t, map[string]string{"content.xml": "<x/>"})
	if _, err := ingest.ReadDocx(data); !errors.Is(err, ingest.ErrNotDocx) {
		t.Errorf("err = %v, want ErrNotDocx", err)
	}
}

func TestReadDocx_NotZip(t *testing.T) {
	if _, err := ingest.ReadDocx([]byte("plain text")); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestReadText(t *testing.T) {
	doc := ingest.ReadText([]byte("D1  team\n\n\t D2 problem \r\nD3"))
	want := []string{"D1 team", "D2 problem", "D3"}
	if diff := cmp.Diff(want, doc.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Text(); got != "D1 team\nD2 problem\nD3" {
		t.Errorf("Text() = %q", got)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	md := filepath.Join(dir, "r.md")
	if err := os.WriteFile(md, []byte("D1 x\nD2 y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ingest.ReadFile(md)
	if err != nil {
		t.Fatalf("ReadFile md: %v", err)
	}
	if len(doc.Lines) != 2 {
		t.Errorf("md lines = %d, want 2", len(doc.Lines))
	}

	dx := filepath.Join(dir, "r.DOCX")
	if err := os.WriteFile(dx, makeDocx(t, map[string]string{"word/document.xml": docXML}), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ingest.ReadFile(dx); err != nil {
		t.Errorf("ReadFile docx: %v", err)
	}

	pdf := filepath.Join(dir, "r.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ingest.ReadFile(pdf); !errors.Is(err, ingest.ErrUnsupportedFormat) {
		t.Errorf("pdf err = %v, want ErrUnsupportedFormat", err)
	}

	if _, err := ingest.ReadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.docx", true},
		{"a.TXT", true},
		{"a.md", true},
		{"a.doc", false},
		{"a", false},
	}
	for _, tt := range tests {
		if got := ingest.Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
