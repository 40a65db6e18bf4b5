package export

import (
	"fmt"
	"strings"
	"time"
)

// Format identifies a supported export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
)

// ParseFormat validates a raw format string.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatDOCX:
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// Dataset defines tabular export content. Rows are keyed by header so each
// renderer walks the same column order.
type Dataset struct {
	Title       string
	GeneratedAt time.Time
	Headers     []string
	Rows        []map[string]string
}

// Filename derives a download filename from the dataset title and format.
func (d Dataset) Filename(f Format) string {
	base := sanitizeFilename(d.Title)
	if base == "" {
		base = "export"
	}
	stamp := d.GeneratedAt
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	return fmt.Sprintf("%s_%s.%s", base, stamp.UTC().Format("20060102_150405"), f)
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
