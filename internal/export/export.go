// Package export appends one tabular record per processed award edition
// to a flat CSV file, as a side channel next to the relational store.
package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Record is one edition summary row.
type Record struct {
	Edition  int
	Year     int
	Date     string
	VenueID  int64
	Duration int
	Network  string
}

var header = []string{"run_id", "edition", "year", "ceremony_date", "venue_id", "duration_minutes", "network"}

// Appender writes records to an append-only CSV file. The header is
// written once, when the file is empty; every row carries the run id
// assigned when the Appender was opened. Not safe for concurrent use.
type Appender struct {
	file  *os.File
	w     *csv.Writer
	runID string
	log   *zap.Logger
}

// NewAppender opens (or creates) the CSV file at path for appending.
func NewAppender(path string) (*Appender, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, eris.Wrap(err, "export: open csv file")
	}

	a := &Appender{
		file:  file,
		w:     csv.NewWriter(file),
		runID: uuid.NewString(),
		log:   zap.L().With(zap.String("component", "export")),
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, eris.Wrap(err, "export: stat csv file")
	}
	if info.Size() == 0 {
		if err := a.w.Write(header); err != nil {
			file.Close()
			return nil, eris.Wrap(err, "export: write header")
		}
		a.w.Flush()
	}
	a.log.Info("export file opened", zap.String("path", path), zap.String("run_id", a.runID))
	return a, nil
}

// Append writes one record and flushes it.
func (a *Appender) Append(rec Record) error {
	row := []string{
		a.runID,
		strconv.Itoa(rec.Edition),
		strconv.Itoa(rec.Year),
		rec.Date,
		strconv.FormatInt(rec.VenueID, 10),
		strconv.Itoa(rec.Duration),
		rec.Network,
	}
	if err := a.w.Write(row); err != nil {
		return eris.Wrap(err, "export: write record")
	}
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		return eris.Wrap(err, "export: flush record")
	}
	return nil
}

// Close flushes and closes the underlying file.
func (a *Appender) Close() error {
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		a.file.Close()
		return eris.Wrap(err, "export: flush on close")
	}
	return eris.Wrap(a.file.Close(), "export: close csv file")
}
