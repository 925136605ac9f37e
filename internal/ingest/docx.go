package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const documentPart = "word/document.xml"

// node is a generic element tree; Word markup is matched on local names only.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n *node) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (n *node) child(local string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			return &n.Nodes[i]
		}
	}
	return nil
}

// ReadDocx flattens a .docx archive. Body paragraphs and table rows keep
// their document order; a table row becomes its non-empty cells joined by
// " | ". A merged cell is repeated once per grid column it covers, and a
// vertically merged cell repeats the text of the cell that starts the merge.
func ReadDocx(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, ErrNotDocx
	}
	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", documentPart, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", documentPart, err)
	}

	var root node
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}
	body := root.child("body")
	if body == nil {
		return &Document{}, nil
	}

	doc := &Document{}
	for i := range body.Nodes {
		el := &body.Nodes[i]
		switch el.XMLName.Local {
		case "p":
			doc.ParagraphCount++
			if t := Normalize(paragraphText(el)); t != "" {
				doc.Lines = append(doc.Lines, t)
			}
		case "tbl":
			doc.Lines = append(doc.Lines, tableRows(el)...)
		}
	}
	return doc, nil
}

func paragraphText(p *node) string {
	var b strings.Builder
	var walk func(n *node)
	walk = func(n *node) {
		for i := range n.Nodes {
			c := &n.Nodes[i]
			switch c.XMLName.Local {
			case "t":
				b.WriteString(c.Text)
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			case "pPr", "rPr", "del", "instrText":
			default:
				walk(c)
			}
		}
	}
	walk(p)
	return b.String()
}

func tableRows(tbl *node) []string {
	var out []string
	var above []string // cell text per grid column of the previous row
	for i := range tbl.Nodes {
		tr := &tbl.Nodes[i]
		if tr.XMLName.Local != "tr" {
			continue
		}
		var grid []string
		for j := range tr.Nodes {
			tc := &tr.Nodes[j]
			if tc.XMLName.Local != "tc" {
				continue
			}
			text := Normalize(cellText(tc))
			span := 1
			if pr := tc.child("tcPr"); pr != nil {
				if gs := pr.child("gridSpan"); gs != nil {
					if n, err := strconv.Atoi(gs.attr("val")); err == nil && n > 1 {
						span = n
					}
				}
				if vm := pr.child("vMerge"); vm != nil && vm.attr("val") != "restart" && len(grid) < len(above) {
					text = above[len(grid)]
				}
			}
			for k := 0; k < span; k++ {
				grid = append(grid, text)
			}
		}
		above = grid

		var cells []string
		for _, c := range grid {
			if c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			out = append(out, strings.Join(cells, " | "))
		}
	}
	return out
}

func cellText(tc *node) string {
	var paras []string
	for i := range tc.Nodes {
		if p := &tc.Nodes[i]; p.XMLName.Local == "p" {
			paras = append(paras, paragraphText(p))
		}
	}
	return strings.Join(paras, "\n")
}
