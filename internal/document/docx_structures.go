package document

import (
	"encoding/xml"
)

// Minimal WordprocessingML model for document.xml. Only the elements the
// pipeline reads or writes are mapped; everything else in the package
// (styles, media, relationships) is carried through the container untouched.

// WordDocument represents the main document.xml structure
type WordDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    Body     `xml:"body"`
}

// Body represents the document body
type Body struct {
	Paragraphs []Paragraph `xml:"p"`
	Tables     []Table     `xml:"tbl"`
}

// Paragraph represents a paragraph element. span locates it in the
// original main part; dirty marks it for re-serialization on save.
type Paragraph struct {
	XMLName    xml.Name        `xml:"p"`
	Properties *ParagraphProps `xml:"pPr"`
	Runs       []Run           `xml:"r"`

	span  byteSpan
	dirty bool
}

// ParagraphProps represents paragraph properties
type ParagraphProps struct {
	Style *ParagraphStyle `xml:"pStyle"`
}

// ParagraphStyle represents paragraph style
type ParagraphStyle struct {
	Val string `xml:"val,attr"`
}

// Run represents a text run
type Run struct {
	XMLName    xml.Name  `xml:"r"`
	Properties *RunProps `xml:"rPr"`
	Break      *Break    `xml:"br"`
	Tab        *Tab      `xml:"tab"`
	Text       *Text     `xml:"t"`
}

// RunProps represents run properties
type RunProps struct {
	Bold      *Toggle   `xml:"b"`
	Italic    *Toggle   `xml:"i"`
	Underline *Toggle   `xml:"u"`
	Color     *Color    `xml:"color"`
	Size      *FontSize `xml:"sz"`
}

// Toggle represents a boolean run property (bold, italic, underline)
type Toggle struct {
	Val string `xml:"val,attr,omitempty"`
}

// Color represents text color
type Color struct {
	Val string `xml:"val,attr"`
}

// FontSize represents font size
type FontSize struct {
	Val string `xml:"val,attr"`
}

// Text represents actual text content
type Text struct {
	XMLName xml.Name `xml:"t"`
	Space   string   `xml:"http://www.w3.org/XML/1998/namespace space,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Tab represents a tab character
type Tab struct {
	XMLName xml.Name `xml:"tab"`
}

// Break represents a line break
type Break struct {
	XMLName xml.Name `xml:"br"`
	Type    string   `xml:"type,attr,omitempty"`
}

// Table represents a table element
type Table struct {
	XMLName xml.Name   `xml:"tbl"`
	Rows    []TableRow `xml:"tr"`
}

// TableRow represents a table row
type TableRow struct {
	XMLName xml.Name    `xml:"tr"`
	Cells   []TableCell `xml:"tc"`
}

// TableCell represents a table cell
type TableCell struct {
	XMLName    xml.Name        `xml:"tc"`
	Properties *TableCellProps `xml:"tcPr"`
	Paragraphs []Paragraph     `xml:"p"`
}

// TableCellProps represents table cell properties
type TableCellProps struct {
	VMerge   *VerticalMerge `xml:"vMerge"`
	GridSpan *GridSpan      `xml:"gridSpan"`
}

// VerticalMerge marks a vertically merged cell; Val "restart" starts a
// merged region, an empty Val continues one
type VerticalMerge struct {
	Val string `xml:"val,attr,omitempty"`
}

// GridSpan represents the number of grid columns a cell spans
type GridSpan struct {
	Val string `xml:"val,attr"`
}

// IsMergeContinuation reports whether the cell is a non-top member of a
// vertically merged region and must be skipped by the walker
func (c *TableCell) IsMergeContinuation() bool {
	return c.Properties != nil && c.Properties.VMerge != nil &&
		c.Properties.VMerge.Val != "restart"
}

// IsMergedRegionStart reports whether the cell starts a merged region
// (vertical restart or a multi-column span)
func (c *TableCell) IsMergedRegionStart() bool {
	if c.Properties == nil {
		return false
	}
	if c.Properties.VMerge != nil && c.Properties.VMerge.Val == "restart" {
		return true
	}
	return c.Properties.GridSpan != nil && c.Properties.GridSpan.Val != "" &&
		c.Properties.GridSpan.Val != "1"
}
