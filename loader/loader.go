// Package loader reads company exports (CSV or XLSX) into CompanyRecords.
package loader

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/use-agent/founderscope/models"
)

// LoadFiles reads every file in order and returns the merged records.
// Rows are deduplicated on Organization Name (first occurrence wins), rows
// without founders or a profile URL are dropped, and profile URLs are cut
// before any "about" suffix.
func LoadFiles(paths ...string) ([]models.CompanyRecord, error) {
	var all []models.CompanyRecord
	for _, p := range paths {
		recs, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return Clean(all), nil
}

// LoadFile reads one file by extension without cleaning.
func LoadFile(path string) ([]models.CompanyRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: open %s", path)
		}
		defer f.Close()
		recs, err := ReadCSV(f)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: %s", path)
		}
		return recs, nil
	case ".xlsx":
		recs, err := ReadXLSX(path)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: %s", path)
		}
		return recs, nil
	default:
		return nil, eris.Errorf("loader: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCSV decodes a CSV export with a header row.
func ReadCSV(r io.Reader) ([]models.CompanyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	return decode(cr, header)
}

// ReadXLSX decodes the first sheet of a workbook whose first row is the
// header.
func ReadXLSX(path string) ([]models.CompanyRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}

	rows := make([][]string, 0, len(f.Sheets[0].Rows))
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decode(&sliceReader{rows: rows[1:]}, rows[0])
}

// decode runs csvutil over any row source, so CSV and XLSX share the
// column mapping declared on CompanyRecord.
func decode(r csvutil.Reader, header []string) ([]models.CompanyRecord, error) {
	header = cleanHeader(header)
	dec, err := csvutil.NewDecoder(&padReader{r: r, width: len(header)}, header...)
	if err != nil {
		return nil, eris.Wrap(err, "decode: header")
	}

	var out []models.CompanyRecord
	for {
		var rec models.CompanyRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "decode: line %d", len(out)+2)
		}
		out = append(out, rec)
	}
	if unknown := dec.Unused(); len(unknown) > 0 {
		slog.Debug("ignored input columns", "count", len(unknown))
	}
	return out, nil
}

func cleanHeader(h []string) []string {
	out := make([]string, len(h))
	for i, c := range h {
		if i == 0 {
			c = strings.TrimPrefix(c, "\uFEFF")
		}
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// Clean deduplicates and filters records the way LoadFiles does.
func Clean(recs []models.CompanyRecord) []models.CompanyRecord {
	seen := make(map[string]struct{}, len(recs))
	out := make([]models.CompanyRecord, 0, len(recs))
	for _, r := range recs {
		r.OrganizationName = strings.TrimSpace(r.OrganizationName)
		if _, dup := seen[r.OrganizationName]; dup {
			continue
		}
		seen[r.OrganizationName] = struct{}{}

		r.LinkedIn = trimAbout(strings.TrimSpace(r.LinkedIn))
		if r.OrganizationName == "" || strings.TrimSpace(r.Founders) == "" || r.LinkedIn == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// trimAbout drops everything from the first "about", turning a company's
// about page URL into its profile URL.
func trimAbout(u string) string {
	if i := strings.Index(u, "about"); i >= 0 {
		return u[:i]
	}
	return u
}

type sliceReader struct {
	rows [][]string
	next int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}

// padReader fits ragged rows to the header width; spreadsheets drop
// trailing empty cells.
type padReader struct {
	r     csvutil.Reader
	width int
}

func (p *padReader) Read() ([]string, error) {
	row, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	switch {
	case len(row) < p.width:
		row = append(row, make([]string, p.width-len(row))...)
	case len(row) > p.width:
		row = row[:p.width]
	}
	return row, nil
}
