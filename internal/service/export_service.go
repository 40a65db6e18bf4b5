package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/ecclesia-app/admin-gateway/pkg/config"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/export"
)

// renderer encodes one dataset into one document format.
type renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Bytes       []byte
	Filename    string
	ContentType string
}

// ExportService renders the currently filtered collection of any list page
// into a downloadable document. An export never mutates server state.
type ExportService struct {
	renderers map[export.Format]renderer
	maxRows   int
	logger    *zap.Logger

	// OnExport, when set, observes completed renders.
	OnExport func(format export.Format)
}

// NewExportService creates an export service with all four renderers.
func NewExportService(cfg config.ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		renderers: map[export.Format]renderer{
			export.FormatCSV:  export.NewCSVExporter(),
			export.FormatPDF:  export.NewPDFExporter(),
			export.FormatXLSX: export.NewXLSXExporter(),
			export.FormatDOCX: export.NewDOCXExporter(),
		},
		maxRows: cfg.MaxRows,
		logger:  logger,
	}
}

// Render encodes the dataset. An empty collection still renders: the
// document carries the headers and no rows.
func (s *ExportService) Render(format export.Format, data export.Dataset) (*ExportFile, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if s.maxRows > 0 && len(data.Rows) > s.maxRows {
		return nil, appErrors.Clone(appErrors.ErrExportFailed, "export exceeds the row limit")
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now().UTC()
	}

	start := time.Now()
	raw, err := r.Render(data)
	if err != nil {
		s.logger.Error("export render failed",
			zap.String("format", string(format)),
			zap.String("title", data.Title),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status, appErrors.ErrExportFailed.Message)
	}

	if s.OnExport != nil {
		s.OnExport(format)
	}
	s.logger.Info("export rendered",
		zap.String("format", string(format)),
		zap.String("title", data.Title),
		zap.Int("rows", len(data.Rows)),
		zap.Duration("duration", time.Since(start)))

	return &ExportFile{
		Bytes:       raw,
		Filename:    data.Filename(format),
		ContentType: format.ContentType(),
	}, nil
}
