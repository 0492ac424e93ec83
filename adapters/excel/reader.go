package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chdash/domain/subject"
	"chdash/internal/errors"

	"github.com/xuri/excelize/v2"
)

// SheetData is a header row plus data rows read from a file.
type SheetData struct {
	Headers []string
	Rows    [][]string
}

// DataReader handles reading local Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader, picking the format from the extension
func NewDataReader(filePath string) *DataReader {
	fileType := "csv"
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file into a header and string rows
func (r *DataReader) ReadData() (*SheetData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, fmt.Errorf("%s file not accessible: %w", strings.ToUpper(r.fileType), err)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the first sheet of the workbook
func (r *DataReader) readExcelData() (*SheetData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return splitHeader(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*SheetData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return splitHeader(rows)
}

func splitHeader(rows [][]string) (*SheetData, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}
	return &SheetData{Headers: rows[0], Rows: rows[1:]}, nil
}

// FileSource reads subjects from local .csv and .xlsx files, addressed by
// plain path or file:// URL.
type FileSource struct{}

// NewFileSource creates a local file source
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Supports accepts file:// URLs and scheme-less paths ending in .csv or .xlsx
func (s *FileSource) Supports(location string) bool {
	path, ok := localPath(location)
	if !ok {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".csv" || ext == ".xlsx"
}

// Load reads and parses the file
func (s *FileSource) Load(ctx context.Context, location string) ([]subject.Subject, error) {
	path, _ := localPath(location)
	data, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, errors.DataRetrieval(location, err)
	}
	return subject.FromRecords(data.Headers, data.Rows)
}

func localPath(location string) (string, bool) {
	if strings.HasPrefix(location, "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return "", false
		}
		return u.Path, true
	}
	if strings.Contains(location, "://") {
		return "", false
	}
	return location, true
}
