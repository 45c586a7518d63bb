package document

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// xlsxUnit is one translatable worksheet cell (or merged region top-left)
type xlsxUnit struct {
	file   *excelize.File
	sheet  string
	coord  string
	text   string
	kind   UnitKind
	region mergedRegion // zero unless kind == KindMergedRegion
}

func (u *xlsxUnit) Kind() UnitKind { return u.kind }
func (u *xlsxUnit) Text() string   { return u.text }

func (u *xlsxUnit) Ref() string {
	return fmt.Sprintf("%s!%s", u.sheet, u.coord)
}

// WriteBilingual writes the original and the translation as two rich-text
// lines; the translation line is italic gray. Word wrap is enabled over the
// full merged range so the appended line stays visible.
func (u *xlsxUnit) WriteBilingual(translated string) error {
	err := u.file.SetCellRichText(u.sheet, u.coord, []excelize.RichTextRun{
		{Text: u.text + "\n"},
		{
			Text: translated,
			Font: &excelize.Font{Italic: true, Color: bilingualRunColor},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write cell %s: %w", u.Ref(), err)
	}

	return u.applyWrapStyle()
}

// WriteTranslationOnly replaces the cell content with the translation
func (u *xlsxUnit) WriteTranslationOnly(translated string) error {
	if err := u.file.SetCellValue(u.sheet, u.coord, translated); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", u.Ref(), err)
	}
	if u.kind == KindMergedRegion {
		return u.applyWrapStyle()
	}
	return nil
}

// applyWrapStyle enables word wrap and top alignment, extending the style
// over the full merged range even though content lives in the top-left cell
func (u *xlsxUnit) applyWrapStyle() error {
	style, err := u.currentStyle()
	if err != nil {
		return err
	}

	if style.Alignment == nil {
		style.Alignment = &excelize.Alignment{}
	}
	style.Alignment.WrapText = true
	style.Alignment.Vertical = "top"

	styleID, err := u.file.NewStyle(style)
	if err != nil {
		return fmt.Errorf("failed to build style for %s: %w", u.Ref(), err)
	}

	start, end := u.coord, u.coord
	if u.kind == KindMergedRegion {
		start, end = u.region.start, u.region.end
	}
	if err := u.file.SetCellStyle(u.sheet, start, end, styleID); err != nil {
		return fmt.Errorf("failed to style %s: %w", u.Ref(), err)
	}
	return nil
}

// currentStyle loads the cell's existing style so wrap settings extend it
// instead of clobbering fonts and borders
func (u *xlsxUnit) currentStyle() (*excelize.Style, error) {
	styleID, err := u.file.GetCellStyle(u.sheet, u.coord)
	if err != nil {
		return &excelize.Style{}, nil
	}
	style, err := u.file.GetStyle(styleID)
	if err != nil || style == nil {
		return &excelize.Style{}, nil
	}
	return style, nil
}
