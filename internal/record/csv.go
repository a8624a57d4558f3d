package record

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

// CSVLogger appends records to a single CSV file, creating it with a header
// row on first use. Appends are serialized by a mutex so concurrent
// sessions never interleave partial rows.
type CSVLogger struct {
	mu   sync.Mutex
	path string
}

func NewCSVLogger(path string) *CSVLogger { return &CSVLogger{path: path} }

var _ Logger = (*CSVLogger)(nil)
var _ Reader = (*CSVLogger)(nil)

func (l *CSVLogger) Append(r *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	writeHeader := false
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		writeHeader = true
	} else if err != nil {
		return fmt.Errorf("stat response file: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open response file: %w", err)
	}
	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Header); err != nil {
			_ = f.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(row(r)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close response file: %w", err)
	}
	return nil
}

// List reads the file back, oldest first. A missing file is an empty study,
// not an error.
func (l *CSVLogger) List() ([]*Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open response file: %w", err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	if _, err := rd.Read(); err != nil { // header
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var out []*Record
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		r, err := parseRow(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
}

// ExportCSV renders records into a downloadable CSV document.
func ExportCSV(rs []*Record) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(Header)
	for _, r := range rs {
		if err := w.Write(row(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func row(r *Record) []string {
	return []string{
		r.ID,
		r.ParticipantID,
		strconv.Itoa(r.RoundIndex),
		r.Hashtag,
		r.SubmittedAt.UTC().Format(time.RFC3339),
		r.Prompt,
	}
}

func parseRow(rec []string) (*Record, error) {
	if len(rec) != len(Header) {
		return nil, fmt.Errorf("malformed row: %d columns, want %d", len(rec), len(Header))
	}
	round, err := strconv.Atoi(rec[2])
	if err != nil {
		return nil, fmt.Errorf("parse round index %q: %w", rec[2], err)
	}
	ts, err := time.Parse(time.RFC3339, rec[4])
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", rec[4], err)
	}
	return &Record{
		ID:            rec[0],
		ParticipantID: rec[1],
		RoundIndex:    round,
		Hashtag:       rec[3],
		SubmittedAt:   ts,
		Prompt:        rec[5],
	}, nil
}
