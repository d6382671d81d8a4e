package readings

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunSource builds statements without a server.
func dryRunSource(t *testing.T) *TimescaleSource {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=pvsizer dbname=pvsizer sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return NewTimescaleSource(db, zap.NewNop().Sugar())
}

func TestTimescaleDayQuery(t *testing.T) {
	src := dryRunSource(t)
	day := time.Date(2019, 11, 1, 15, 4, 0, 0, time.UTC)

	var rows []pvReading
	stmt := src.dayQuery(context.Background(), day).Find(&rows).Statement
	sql := stmt.SQL.String()

	for _, want := range []string{`"pv_readings"`, "time >= $1 AND time < $2", "ORDER BY time"} {
		if !strings.Contains(sql, want) {
			t.Errorf("query %q does not contain %q", sql, want)
		}
	}
	if len(stmt.Vars) != 2 {
		t.Fatalf("got %d bind vars, expected 2", len(stmt.Vars))
	}
	start, end := stmt.Vars[0].(time.Time), stmt.Vars[1].(time.Time)
	if !start.Equal(time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2019, 11, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("bounds = [%s, %s)", start, end)
	}
}

func TestTimescaleAtQuery(t *testing.T) {
	src := dryRunSource(t)
	at := time.Date(2019, 11, 1, 12, 0, 37, 0, time.UTC)

	var row pvReading
	stmt := src.atQuery(context.Background(), at).First(&row).Statement
	sql := stmt.SQL.String()

	if !strings.Contains(sql, "LIMIT $3") {
		t.Errorf("query %q does not bind a row limit", sql)
	}
	if len(stmt.Vars) != 3 {
		t.Fatalf("got %d bind vars, expected 3", len(stmt.Vars))
	}
	if limit := fmt.Sprint(stmt.Vars[2]); limit != "1" {
		t.Errorf("limit = %s, expected 1", limit)
	}
	start := stmt.Vars[0].(time.Time)
	if !start.Equal(time.Date(2019, 11, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %s, expected the minute boundary", start)
	}
}

func TestPVReadingConversion(t *testing.T) {
	p := pvReading{
		Time:            time.Date(2019, 11, 1, 12, 0, 59, 0, time.UTC),
		Irradiance:      850,
		CellTemperature: 47,
		Demand:          2350,
	}
	r := p.reading()
	if !r.Time.Equal(time.Date(2019, 11, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Time = %s, expected truncation to the minute", r.Time)
	}
	if r.Irradiance != 850 || r.CellTemperature != 47 || r.Demand != 2350 {
		t.Errorf("reading = %+v", r)
	}
}
