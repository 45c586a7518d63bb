package document

import (
	"bytes"
	"encoding/xml"
)

// Serialization of modified paragraphs back into WordprocessingML with the
// conventional w: prefix. Only paragraphs the writer touched go through
// here; everything else is spliced through from the original bytes.

func writeParagraph(buf *bytes.Buffer, para *Paragraph) {
	buf.WriteString("<w:p>")
	if para.Properties != nil && para.Properties.Style != nil {
		buf.WriteString(`<w:pPr><w:pStyle w:val="`)
		writeEscaped(buf, para.Properties.Style.Val)
		buf.WriteString(`"/></w:pPr>`)
	}
	for i := range para.Runs {
		writeRun(buf, &para.Runs[i])
	}
	buf.WriteString("</w:p>")
}

func writeRun(buf *bytes.Buffer, run *Run) {
	buf.WriteString("<w:r>")
	if run.Properties != nil {
		writeRunProps(buf, run.Properties)
	}
	if run.Break != nil {
		if run.Break.Type != "" {
			buf.WriteString(`<w:br w:type="`)
			writeEscaped(buf, run.Break.Type)
			buf.WriteString(`"/>`)
		} else {
			buf.WriteString("<w:br/>")
		}
	}
	if run.Tab != nil {
		buf.WriteString("<w:tab/>")
	}
	if run.Text != nil {
		if run.Text.Space != "" {
			buf.WriteString(`<w:t xml:space="`)
			writeEscaped(buf, run.Text.Space)
			buf.WriteString(`">`)
		} else {
			buf.WriteString("<w:t>")
		}
		writeEscaped(buf, run.Text.Text)
		buf.WriteString("</w:t>")
	}
	buf.WriteString("</w:r>")
}

func writeRunProps(buf *bytes.Buffer, props *RunProps) {
	buf.WriteString("<w:rPr>")
	writeToggle(buf, "w:b", props.Bold)
	writeToggle(buf, "w:i", props.Italic)
	writeToggle(buf, "w:u", props.Underline)
	if props.Color != nil {
		buf.WriteString(`<w:color w:val="`)
		writeEscaped(buf, props.Color.Val)
		buf.WriteString(`"/>`)
	}
	if props.Size != nil {
		buf.WriteString(`<w:sz w:val="`)
		writeEscaped(buf, props.Size.Val)
		buf.WriteString(`"/>`)
	}
	buf.WriteString("</w:rPr>")
}

func writeToggle(buf *bytes.Buffer, name string, toggle *Toggle) {
	if toggle == nil {
		return
	}
	if toggle.Val != "" {
		buf.WriteString("<" + name + ` w:val="`)
		writeEscaped(buf, toggle.Val)
		buf.WriteString(`"/>`)
		return
	}
	buf.WriteString("<" + name + "/>")
}

func writeEscaped(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}
