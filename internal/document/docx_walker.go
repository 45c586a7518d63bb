package document

import (
	"fmt"
	"strings"
)

// Units enumerates paragraphs and table cells in document order.
// Vertically merged continuation cells are skipped entirely; only the
// top cell of a merged region is yielded.
func (d *DocxDocument) Units() ([]Unit, error) {
	var units []Unit

	for i := range d.word.Body.Paragraphs {
		para := &d.word.Body.Paragraphs[i]
		text := extractParagraphText(para)
		if strings.TrimSpace(text) == "" {
			continue
		}
		units = append(units, &docxUnit{
			kind: KindParagraph,
			ref:  fmt.Sprintf("paragraph %d", i+1),
			text: text,
			para: para,
		})
	}

	for t := range d.word.Body.Tables {
		table := &d.word.Body.Tables[t]
		for r := range table.Rows {
			row := &table.Rows[r]
			for c := range row.Cells {
				cell := &row.Cells[c]
				if cell.IsMergeContinuation() {
					continue
				}

				text := extractCellText(cell)
				if strings.TrimSpace(text) == "" || NonLinguistic(text) {
					continue
				}

				kind := KindTableCell
				if cell.IsMergedRegionStart() {
					kind = KindMergedRegion
				}
				units = append(units, &docxUnit{
					kind: kind,
					ref:  fmt.Sprintf("table %d cell r%dc%d", t+1, r+1, c+1),
					text: text,
					cell: cell,
				})
			}
		}
	}

	return units, nil
}

// extractCellText joins the cell's paragraphs with newlines
func extractCellText(cell *TableCell) string {
	var parts []string
	for i := range cell.Paragraphs {
		if text := extractParagraphText(&cell.Paragraphs[i]); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// docxUnit is one translatable region of a Word document. Exactly one of
// para/cell is set depending on the kind.
type docxUnit struct {
	kind UnitKind
	ref  string
	text string
	para *Paragraph
	cell *TableCell
}

func (u *docxUnit) Kind() UnitKind { return u.kind }
func (u *docxUnit) Text() string   { return u.text }
func (u *docxUnit) Ref() string    { return u.ref }
