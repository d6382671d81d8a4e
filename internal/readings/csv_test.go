package readings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `Data_Hora,Radiação,Temp_Cel,Temp_Amb,Tensao_S1_Avg,Potencia_FV_Avg
01/11/19 11:59,"801,5","45,2","29,8","350,1","2100"
01/11/19 12:00,"850,25","47,1","30,2","351,7","2350,5"
01/11/19 12:01,"845","46,9","","352,0",""
not a date,"900","50","31","350","2000"
01/11/19 12:02,"","46,0","30,0","349,0","2000"
01/11/19 12:00,"1,0","1,0","1,0","1,0","1,0"
02/11/19 08:30,"420","31,5","24,0","340,2","1200"
`

func TestNewCSVSource(t *testing.T) {
	src, err := NewCSVSource(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	defer src.Close()

	if got := len(src.All()); got != 4 {
		t.Errorf("loaded %d readings, expected 4", got)
	}
	if src.Skipped() != 2 {
		t.Errorf("Skipped = %d, expected 2", src.Skipped())
	}

	ctx := context.Background()
	noon := time.Date(2019, 11, 1, 12, 0, 0, 0, time.UTC)

	r, err := src.At(ctx, noon)
	if err != nil {
		t.Fatalf("At(noon): %v", err)
	}
	expected := Reading{Time: noon, Irradiance: 850.25, CellTemperature: 47.1, AmbientTemperature: 30.2, Demand: 2350.5}
	if r != expected {
		t.Errorf("At(noon) = %+v, expected %+v", r, expected)
	}
	if got := r.OperatingTemperature(); got < 320.249 || got > 320.251 {
		t.Errorf("OperatingTemperature = %v, expected 320.25", got)
	}

	// Seconds and time zone are ignored.
	withSeconds := time.Date(2019, 11, 1, 12, 0, 42, 0, time.FixedZone("BRT", -3*3600))
	if r2, err := src.At(ctx, withSeconds); err != nil || r2 != expected {
		t.Errorf("At(12:00:42 BRT) = %+v, %v", r2, err)
	}

	r3, err := src.At(ctx, noon.Add(time.Minute))
	if err != nil {
		t.Fatalf("At(12:01): %v", err)
	}
	if r3.AmbientTemperature != 0 || r3.Demand != 0 {
		t.Errorf("empty optional columns = %v/%v, expected zeros", r3.AmbientTemperature, r3.Demand)
	}

	if _, err := src.At(ctx, noon.Add(time.Hour)); !errors.Is(err, ErrNoReading) {
		t.Errorf("At(13:00) error = %v, expected ErrNoReading", err)
	}
}

func TestCSVSourceDay(t *testing.T) {
	src, err := NewCSVSource(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}

	tests := []struct {
		name     string
		day      time.Time
		expected int
	}{
		{"first day", time.Date(2019, 11, 1, 15, 0, 0, 0, time.UTC), 3},
		{"second day", time.Date(2019, 11, 2, 0, 0, 0, 0, time.UTC), 1},
		{"empty day", time.Date(2019, 11, 3, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := src.Day(context.Background(), tt.day)
			if err != nil {
				t.Fatalf("Day: %v", err)
			}
			if len(day) != tt.expected {
				t.Fatalf("got %d readings, expected %d", len(day), tt.expected)
			}
			for i := 1; i < len(day); i++ {
				if !day[i].Time.After(day[i-1].Time) {
					t.Errorf("readings not ascending at %d", i)
				}
			}
		})
	}
}

func TestNewCSVSourceSemicolon(t *testing.T) {
	doc := "Data_Hora;Radiação;Temp_Cel;Temp_Amb;Potencia_FV_Avg\n" +
		"01/11/19 12:00;850,25;47,1;30,2;2350,5\n"

	src, err := NewCSVSource(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	r, err := src.At(context.Background(), time.Date(2019, 11, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if r.Irradiance != 850.25 || r.Demand != 2350.5 {
		t.Errorf("reading = %+v", r)
	}
}

func TestNewCSVSourceBadNumber(t *testing.T) {
	doc := "Data_Hora,Radiação,Temp_Cel,Temp_Amb,Potencia_FV_Avg\n" +
		"01/11/19 12:00,lots,47,30,2350\n"

	if _, err := NewCSVSource(strings.NewReader(doc)); err == nil {
		t.Error("expected an error for a non-numeric irradiance")
	}
}
