package service

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/engine"
	"github.com/noah-isme/course-scheduler/pkg/export"
	"github.com/noah-isme/course-scheduler/pkg/storage"
)

// ExportFormat is the set of schedule export formats the API accepts.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ScheduleExportResult captures successful generation metadata.
type ScheduleExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders a generated schedule Result into a downloadable
// file and issues a signed, time-limited download URL for it.
type ExportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the given schedule Result into the requested format and
// persists it, returning a signed download URL.
func (s *ExportService) Generate(studentID string, result *engine.Result, format ExportFormat) (*ScheduleExportResult, error) {
	if result == nil {
		return nil, fmt.Errorf("result is nil")
	}

	dataset := s.buildDataset(result)
	title := fmt.Sprintf("Schedule - Student %s", studentID)

	var payload []byte
	var err error
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported export format %s", format)
	}
	if err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	filename := s.buildFilename(studentID, jobID, format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		return nil, err
	}
	urlPrefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if urlPrefix == "" {
		urlPrefix = "/api/v1"
	}
	downloadURL := fmt.Sprintf("%s/schedules/export/%s", urlPrefix, token)

	return &ScheduleExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          downloadURL,
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(studentID, jobID string, format ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("schedule_%s_%s_%s.%s", sanitizeFilename(studentID), timestamp, jobID[:8], format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(result *engine.Result) export.Dataset {
	rows := make([]map[string]string, 0, len(result.SelectedSectionIDs))
	for i, sectionID := range result.SelectedSectionIDs {
		subjectID := ""
		if i < len(result.CoveredSubjectIDs) {
			subjectID = result.CoveredSubjectIDs[i]
		}
		rows = append(rows, map[string]string{
			"Subject ID": subjectID,
			"Section ID": sectionID,
		})
	}
	for _, unassigned := range result.Unassigned {
		rows = append(rows, map[string]string{
			"Subject ID": unassigned.SubjectID,
			"Section ID": fmt.Sprintf("UNASSIGNED (%s)", unassigned.Reason),
		})
	}
	return export.Dataset{
		Headers: []string{"Subject ID", "Section ID"},
		Rows:    rows,
	}
}
