package store

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"

	"github.com/rotisserie/eris"
)

// csvHeader is the prediction log schema: the 8 request fields in order,
// then the rounded AQI, category, and timestamp.
var csvHeader = []string{
	"pm25", "pm10", "no2", "so2", "co", "o3", "temperature", "humidity",
	"Predicted_AQI", "Category", "Timestamp",
}

// CSVLog is the append-only prediction log. The header is written once
// when the file is created; appends are serialized with a mutex so
// concurrent requests cannot interleave partial rows.
type CSVLog struct {
	mu   sync.Mutex
	path string
}

// NewCSVLog returns a log that appends to the file at path. The file is
// created lazily on first append.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

// Append writes one prediction row, creating the file with a header first
// if it does not exist yet.
func (l *CSVLog) Append(p Prediction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "csvlog: open %s", l.path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return eris.Wrap(err, "csvlog: write header")
		}
	}

	in := p.Input
	row := []string{
		formatValue(in.PM25),
		formatValue(in.PM10),
		formatValue(in.NO2),
		formatValue(in.SO2),
		formatValue(in.CO),
		formatValue(in.O3),
		formatValue(in.Temperature),
		formatValue(in.Humidity),
		strconv.FormatFloat(p.AQI, 'f', 1, 64),
		p.Category,
		p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if err := w.Write(row); err != nil {
		return eris.Wrap(err, "csvlog: write row")
	}

	w.Flush()
	return eris.Wrap(w.Error(), "csvlog: flush")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
