package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderExactOutput(t *testing.T) {
	data := Dataset{
		Title:   "Groupes",
		Headers: []string{"Nom", "Responsable"},
		Rows: []map[string]string{
			{"Nom": "Chorale", "Responsable": "Fr. Kabasele"},
			{"Nom": "Inter, cession", "Responsable": ""},
		},
	}

	raw, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Nom,Responsable\nChorale,Fr. Kabasele\n\"Inter, cession\",\n", string(raw))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)

	_, err = ParseFormat("odt")
	assert.Error(t, err)
}

func TestFilenameSanitizesTitle(t *testing.T) {
	data := Dataset{
		Title:       "Écoles du dimanche",
		GeneratedAt: time.Date(2026, time.August, 29, 10, 30, 0, 0, time.UTC),
	}

	name := data.Filename(FormatPDF)
	assert.Equal(t, "écoles_du_dimanche_20260829_103000.pdf", name)
}

func TestContentTypes(t *testing.T) {
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "application/octet-stream", Format("odt").ContentType())
}
