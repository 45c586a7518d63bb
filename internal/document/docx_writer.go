package document

// Appended translation runs are italic gray so they read as a second,
// visually distinct line under the original.
const bilingualRunColor = "808080"

// WriteBilingual appends the translation after a line break as new runs.
// The original runs are never touched.
func (u *docxUnit) WriteBilingual(translated string) error {
	if u.para != nil {
		appendBilingualRuns(u.para, translated)
		return nil
	}

	// For table cells the translation goes after the last paragraph
	// that carries text, keeping empty trailing paragraphs in place.
	if last := lastTextParagraph(u.cell); last != nil {
		appendBilingualRuns(last, translated)
	}
	return nil
}

// WriteTranslationOnly replaces all run content with a single run holding
// the translation, preserving the first run's formatting.
func (u *docxUnit) WriteTranslationOnly(translated string) error {
	if u.para != nil {
		replaceParagraphText(u.para, translated)
		return nil
	}

	first := true
	for i := range u.cell.Paragraphs {
		para := &u.cell.Paragraphs[i]
		if extractParagraphText(para) == "" {
			continue
		}
		if first {
			replaceParagraphText(para, translated)
			first = false
		} else {
			para.Runs = nil
			para.dirty = true
		}
	}
	return nil
}

func appendBilingualRuns(para *Paragraph, translated string) {
	para.dirty = true
	para.Runs = append(para.Runs,
		Run{Break: &Break{}},
		Run{
			Properties: &RunProps{
				Italic: &Toggle{},
				Color:  &Color{Val: bilingualRunColor},
			},
			Text: &Text{Text: translated, Space: "preserve"},
		},
	)
}

func replaceParagraphText(para *Paragraph, translated string) {
	para.dirty = true
	var props *RunProps
	if len(para.Runs) > 0 {
		props = para.Runs[0].Properties
	}
	para.Runs = []Run{{
		Properties: props,
		Text:       &Text{Text: translated, Space: "preserve"},
	}}
}

func lastTextParagraph(cell *TableCell) *Paragraph {
	var last *Paragraph
	for i := range cell.Paragraphs {
		if extractParagraphText(&cell.Paragraphs[i]) != "" {
			last = &cell.Paragraphs[i]
		}
	}
	if last == nil && len(cell.Paragraphs) > 0 {
		last = &cell.Paragraphs[len(cell.Paragraphs)-1]
	}
	return last
}
