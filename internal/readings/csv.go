package readings

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// CSVTimeLayout is the layout of the Data_Hora column (day first, two-digit year).
const CSVTimeLayout = "02/01/06 15:04"

// decimal is a float column that may use a decimal comma. Empty cells decode
// as NaN.
type decimal float64

func (d *decimal) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = decimal(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*d = decimal(v)
	return nil
}

func (d decimal) orZero() float64 {
	if math.IsNaN(float64(d)) {
		return 0
	}
	return float64(d)
}

type csvRow struct {
	Time               string  `csv:"Data_Hora"`
	Irradiance         decimal `csv:"Radiação"`
	CellTemperature    decimal `csv:"Temp_Cel"`
	AmbientTemperature decimal `csv:"Temp_Amb"`
	Demand             decimal `csv:"Potencia_FV_Avg"`
}

// CSVSource serves readings from a logger export held in memory. It is
// read-only after construction and safe for concurrent use.
type CSVSource struct {
	byMinute map[time.Time]Reading
	sorted   []Reading
	skipped  int
}

// OpenCSV loads a CSV export from path.
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open readings file: %w", err)
	}
	defer f.Close()

	return NewCSVSource(f)
}

// NewCSVSource parses a CSV export. Both comma and semicolon separated files
// are accepted; columns other than the ones used are ignored. Rows with an
// unparsable timestamp or without irradiance or cell temperature are
// skipped; missing ambient temperature or demand reads as zero. When a
// minute appears twice the first row wins.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	br := bufio.NewReader(r)
	header, _ := br.Peek(4096)
	if i := bytes.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}

	reader := csv.NewReader(br)
	if bytes.Count(header, []byte{';'}) > bytes.Count(header, []byte{','}) {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1

	var rows []*csvRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse readings: %w", err)
	}

	s := &CSVSource{byMinute: make(map[time.Time]Reading, len(rows))}
	for _, row := range rows {
		// Unparsable timestamps skip the row rather than failing the file.
		ts, err := time.Parse(CSVTimeLayout, strings.TrimSpace(row.Time))
		if err != nil || math.IsNaN(float64(row.Irradiance)) || math.IsNaN(float64(row.CellTemperature)) {
			s.skipped++
			continue
		}
		rd := Reading{
			Time:               Minute(ts),
			Irradiance:         float64(row.Irradiance),
			CellTemperature:    float64(row.CellTemperature),
			AmbientTemperature: row.AmbientTemperature.orZero(),
			Demand:             row.Demand.orZero(),
		}
		if _, dup := s.byMinute[rd.Time]; dup {
			continue
		}
		s.byMinute[rd.Time] = rd
		s.sorted = append(s.sorted, rd)
	}

	sort.Slice(s.sorted, func(i, j int) bool { return s.sorted[i].Time.Before(s.sorted[j].Time) })
	return s, nil
}

// At implements Source
func (s *CSVSource) At(_ context.Context, t time.Time) (Reading, error) {
	rd, ok := s.byMinute[Minute(t)]
	if !ok {
		return Reading{}, fmt.Errorf("%s: %w", Minute(t).Format(CSVTimeLayout), ErrNoReading)
	}
	return rd, nil
}

// Day implements Source
func (s *CSVSource) Day(_ context.Context, day time.Time) ([]Reading, error) {
	start, end := dayBounds(day)
	lo := sort.Search(len(s.sorted), func(i int) bool { return !s.sorted[i].Time.Before(start) })
	hi := sort.Search(len(s.sorted), func(i int) bool { return !s.sorted[i].Time.Before(end) })
	out := make([]Reading, hi-lo)
	copy(out, s.sorted[lo:hi])
	return out, nil
}

// All returns every reading, ascending.
func (s *CSVSource) All() []Reading {
	out := make([]Reading, len(s.sorted))
	copy(out, s.sorted)
	return out
}

// Skipped returns how many rows were dropped while parsing.
func (s *CSVSource) Skipped() int {
	return s.skipped
}

// Close implements Source
func (s *CSVSource) Close() error {
	return nil
}
