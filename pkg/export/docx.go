package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fumiama/go-docx"
)

// DOCXExporter renders datasets into a Word document with a heading,
// generation metadata and a bordered table.
type DOCXExporter struct{}

// NewDOCXExporter constructs a DOCX exporter.
func NewDOCXExporter() *DOCXExporter {
	return &DOCXExporter{}
}

// Render produces document bytes. The table always carries a header row, so
// an empty dataset still yields a well-formed file.
func (e *DOCXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("docx requires at least one header")
	}
	doc := docx.New().WithDefaultTheme()

	if data.Title != "" {
		doc.AddParagraph().AddText(data.Title).Size("28").Bold()
	}
	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	doc.AddParagraph().AddText(fmt.Sprintf("Genere le %s", generated.UTC().Format("02/01/2006 15:04"))).Size("18")
	doc.AddParagraph()

	table := doc.AddTable(len(data.Rows)+1, len(data.Headers), 0, nil)
	for i, header := range data.Headers {
		table.TableRows[0].TableCells[i].AddParagraph().AddText(header).Bold()
	}
	for r, row := range data.Rows {
		for i, header := range data.Headers {
			table.TableRows[r+1].TableCells[i].AddParagraph().AddText(row[header])
		}
	}

	buf := &bytes.Buffer{}
	if _, err := doc.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}
