// Package ingest flattens report files into normalized text lines.
package ingest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for extensions other than .docx, .txt and .md.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrNotDocx is returned when a .docx file lacks word/document.xml.
	ErrNotDocx = errors.New("not a word document")
)

// Document is a flattened report.
type Document struct {
	Lines          []string
	ParagraphCount int
}

// Text joins the lines with newlines.
func (d *Document) Text() string {
	return strings.Join(d.Lines, "\n")
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx", ".txt", ".md":
		return true
	}
	return false
}

// ReadFile flattens the file at path, choosing the reader by extension.
func ReadFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if ext == ".docx" {
		return ReadDocx(data)
	}
	return ReadText(data), nil
}

// ReadText flattens plain text: each line collapsed, blanks dropped.
func ReadText(data []byte) *Document {
	doc := &Document{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		doc.ParagraphCount++
		if ln := Normalize(sc.Text()); ln != "" {
			doc.Lines = append(doc.Lines, ln)
		}
	}
	return doc
}

// Normalize trims s and collapses every whitespace run to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
