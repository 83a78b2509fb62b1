package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/logging"
)

const dateLayout = "2006-01-02 15:04:05"

// TableColumns is the header of a stored trend table
var TableColumns = []string{"date", "keyword", "interest", "sentiment_score", "sentiment_category"}

var readLayouts = []string{dateLayout, time.RFC3339, "2006-01-02"}

// WriteTable writes rows as CSV with a header line
func WriteTable(w io.Writer, rows []report.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableColumns); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Date.UTC().Format(dateLayout),
			string(r.Keyword),
			strconv.Itoa(r.Interest),
			strconv.FormatFloat(r.SentimentScore, 'f', -1, 64),
			string(r.SentimentCategory),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTable parses a CSV table. Rows missing a keyword or category, or with
// an unparsable value, are skipped and counted. Columns are matched by name.
func ReadTable(r io.Reader, log *zap.Logger) ([]report.Row, int, error) {
	log = logging.OrNop(log)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("%w: empty table", report.ErrMalformedInput)
		}
		return nil, 0, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range TableColumns {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("%w: missing column %q", report.ErrMalformedInput, col)
		}
	}

	var rows []report.Row
	dropped := 0
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, dropped, err
		}
		line++

		row, err := parseRow(record, index)
		if err != nil {
			dropped++
			log.Warn("Skipping table row", zap.Int("line", line), zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}

	return rows, dropped, nil
}

func parseRow(record []string, index map[string]int) (report.Row, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	keyword := field("keyword")
	if keyword == "" {
		return report.Row{}, fmt.Errorf("%w: missing keyword", report.ErrMalformedInput)
	}
	category, ok := sentiment.ParseCategory(field("sentiment_category"))
	if !ok {
		return report.Row{}, fmt.Errorf("%w: bad sentiment_category %q", report.ErrMalformedInput, field("sentiment_category"))
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return report.Row{}, err
	}

	// pandas may write interest as a float
	interest, err := strconv.ParseFloat(field("interest"), 64)
	if err != nil {
		return report.Row{}, fmt.Errorf("%w: interest: %v", report.ErrMalformedInput, err)
	}

	score, err := strconv.ParseFloat(field("sentiment_score"), 64)
	if err != nil {
		return report.Row{}, fmt.Errorf("%w: sentiment_score: %v", report.ErrMalformedInput, err)
	}

	return report.Row{
		Date:              date,
		Keyword:           trend.Keyword(keyword),
		Interest:          int(interest),
		SentimentScore:    score,
		SentimentCategory: category,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", report.ErrMalformedInput, s)
}

// SaveTable writes rows to path, creating parent directories
func SaveTable(path string, rows []report.Row) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating table directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("error creating table file: %w", err)
	}

	if err := WriteTable(f, rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("error writing table: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

// LoadTable reads the table stored at path
func LoadTable(path string, log *zap.Logger) ([]report.Row, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("error opening table: %w", err)
	}
	defer f.Close()

	return ReadTable(f, log)
}
