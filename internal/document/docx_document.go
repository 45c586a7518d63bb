package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const docxMainPart = "word/document.xml"

// byteSpan 段落在原始 document.xml 中的字节区间 [begin, end)
type byteSpan struct {
	begin int64
	end   int64
}

// DocxDocument is an open .docx container with its main part parsed.
// The original main part bytes are kept verbatim; Save splices the
// re-serialized modified paragraphs into their original byte spans, so
// element order, namespaces, sectPr, and every unmapped element survive
// byte for byte. All other container entries are copied through untouched.
type DocxDocument struct {
	logger  *zap.Logger
	entries []docxEntry
	main    []byte
	word    *WordDocument
}

type docxEntry struct {
	name string
	data []byte
}

// OpenDocx reads a .docx file and parses word/document.xml
func OpenDocx(path string, logger *zap.Logger) (*DocxDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx container: %w", err)
	}

	doc := &DocxDocument{logger: logger}
	for _, file := range zipReader.File {
		reader, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open entry %s: %w", file.Name, err)
		}
		content, err := io.ReadAll(reader)
		_ = reader.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %s: %w", file.Name, err)
		}
		doc.entries = append(doc.entries, docxEntry{name: file.Name, data: content})

		if file.Name == docxMainPart {
			word, err := parseMainPart(content)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", docxMainPart, err)
			}
			doc.main = content
			doc.word = word
		}
	}

	if doc.word == nil {
		return nil, fmt.Errorf("not a Word document: missing %s", docxMainPart)
	}

	return doc, nil
}

// parseMainPart decodes the body paragraphs and tables while recording the
// byte span of every paragraph, so Save can replace them in place. Body
// children the model does not map (sectPr, bookmarks, ...) are skipped here
// and preserved verbatim by the splice.
func parseMainPart(data []byte) (*WordDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	word := &WordDocument{}
	inBody := false

	for {
		begin := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case !inBody && t.Name.Local == "body":
				inBody = true
			case inBody && t.Name.Local == "p":
				var para Paragraph
				if err := dec.DecodeElement(&para, &t); err != nil {
					return nil, err
				}
				para.span = byteSpan{begin: begin, end: dec.InputOffset()}
				word.Body.Paragraphs = append(word.Body.Paragraphs, para)
			case inBody && t.Name.Local == "tbl":
				table, err := decodeTable(dec)
				if err != nil {
					return nil, err
				}
				word.Body.Tables = append(word.Body.Tables, *table)
			case inBody:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				inBody = false
			}
		}
	}

	return word, nil
}

// decodeTable walks a w:tbl subtree by hand so that cell paragraphs get
// their byte spans recorded (DecodeElement on the whole table would lose
// the decoder offsets of nested paragraphs).
func decodeTable(dec *xml.Decoder) (*Table, error) {
	table := &Table{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tr" {
				row, err := decodeRow(dec)
				if err != nil {
					return nil, err
				}
				table.Rows = append(table.Rows, *row)
			} else if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "tbl" {
				return table, nil
			}
		}
	}
}

func decodeRow(dec *xml.Decoder) (*TableRow, error) {
	row := &TableRow{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tc" {
				cell, err := decodeCell(dec)
				if err != nil {
					return nil, err
				}
				row.Cells = append(row.Cells, *cell)
			} else if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "tr" {
				return row, nil
			}
		}
	}
}

func decodeCell(dec *xml.Decoder) (*TableCell, error) {
	cell := &TableCell{}
	for {
		begin := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tcPr":
				var props TableCellProps
				if err := dec.DecodeElement(&props, &t); err != nil {
					return nil, err
				}
				cell.Properties = &props
			case "p":
				var para Paragraph
				if err := dec.DecodeElement(&para, &t); err != nil {
					return nil, err
				}
				para.span = byteSpan{begin: begin, end: dec.InputOffset()}
				cell.Paragraphs = append(cell.Paragraphs, para)
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "tc" {
				return cell, nil
			}
		}
	}
}

// renderMainPart splices the modified paragraphs into the original bytes.
// Untouched content, including everything the model does not map, passes
// through byte for byte.
func (d *DocxDocument) renderMainPart() []byte {
	dirty := d.dirtyParagraphs()
	if len(dirty) == 0 {
		return d.main
	}
	sort.Slice(dirty, func(i, j int) bool {
		return dirty[i].span.begin < dirty[j].span.begin
	})

	var buf bytes.Buffer
	cursor := int64(0)
	for _, para := range dirty {
		buf.Write(d.main[cursor:para.span.begin])
		writeParagraph(&buf, para)
		cursor = para.span.end
	}
	buf.Write(d.main[cursor:])
	return buf.Bytes()
}

func (d *DocxDocument) dirtyParagraphs() []*Paragraph {
	var dirty []*Paragraph
	for i := range d.word.Body.Paragraphs {
		if para := &d.word.Body.Paragraphs[i]; para.dirty {
			dirty = append(dirty, para)
		}
	}
	for t := range d.word.Body.Tables {
		table := &d.word.Body.Tables[t]
		for r := range table.Rows {
			row := &table.Rows[r]
			for c := range row.Cells {
				cell := &row.Cells[c]
				for p := range cell.Paragraphs {
					if para := &cell.Paragraphs[p]; para.dirty {
						dirty = append(dirty, para)
					}
				}
			}
		}
	}
	return dirty
}

// Save writes the document to path with the updated main part
func (d *DocxDocument) Save(path string) error {
	mainPart := d.renderMainPart()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	zipWriter := zip.NewWriter(out)
	for _, entry := range d.entries {
		writer, err := zipWriter.Create(entry.name)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", entry.name, err)
		}

		content := entry.data
		if entry.name == docxMainPart {
			content = mainPart
		}
		if _, err := writer.Write(content); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", entry.name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize container: %w", err)
	}
	return nil
}

// Close releases resources (the in-memory model needs none)
func (d *DocxDocument) Close() error {
	return nil
}

// Word exposes the parsed main part for tests
func (d *DocxDocument) Word() *WordDocument {
	return d.word
}

// extractParagraphText joins the text content of all runs in a paragraph
func extractParagraphText(para *Paragraph) string {
	var sb strings.Builder
	for i := range para.Runs {
		run := &para.Runs[i]
		switch {
		case run.Text != nil:
			sb.WriteString(run.Text.Text)
		case run.Tab != nil:
			sb.WriteString("\t")
		case run.Break != nil:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
