package readings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/pvsizer/internal/log"
)

// pvReading is a row of the pv_readings hypertable
type pvReading struct {
	Time               time.Time `gorm:"column:time;primaryKey"`
	Irradiance         float64   `gorm:"column:irradiance"`
	CellTemperature    float64   `gorm:"column:cell_temp"`
	AmbientTemperature float64   `gorm:"column:ambient_temp"`
	Demand             float64   `gorm:"column:demand"`
}

// TableName specifies the table name for pvReading
func (pvReading) TableName() string {
	return "pv_readings"
}

func (p pvReading) reading() Reading {
	return Reading{
		Time:               Minute(p.Time.UTC()),
		Irradiance:         p.Irradiance,
		CellTemperature:    p.CellTemperature,
		AmbientTemperature: p.AmbientTemperature,
		Demand:             p.Demand,
	}
}

// TimescaleSource reads readings logged into TimescaleDB
type TimescaleSource struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// OpenTimescale connects to TimescaleDB with the standard GORM configuration
func OpenTimescale(connectionString string, zl *zap.SugaredLogger) (*TimescaleSource, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,        // ErrNoReading covers it
			Colorful:                  false,
		},
	)

	zl.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to create a TimescaleDB connection: %w", err)
	}
	zl.Info("TimescaleDB connection successful")

	return NewTimescaleSource(db, zl), nil
}

// NewTimescaleSource wraps an existing GORM handle
func NewTimescaleSource(db *gorm.DB, zl *zap.SugaredLogger) *TimescaleSource {
	return &TimescaleSource{db: db, logger: zl}
}

func (s *TimescaleSource) atQuery(ctx context.Context, t time.Time) *gorm.DB {
	start := Minute(t)
	return s.db.WithContext(ctx).
		Where("time >= ? AND time < ?", start, start.Add(time.Minute)).
		Order("time")
}

func (s *TimescaleSource) dayQuery(ctx context.Context, day time.Time) *gorm.DB {
	start, end := dayBounds(day)
	return s.db.WithContext(ctx).
		Where("time >= ? AND time < ?", start, end).
		Order("time")
}

// At implements Source
func (s *TimescaleSource) At(ctx context.Context, t time.Time) (Reading, error) {
	var row pvReading
	err := s.atQuery(ctx, t).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Reading{}, fmt.Errorf("%s: %w", Minute(t).Format(CSVTimeLayout), ErrNoReading)
	}
	if err != nil {
		return Reading{}, fmt.Errorf("error querying database for reading: %w", err)
	}
	return row.reading(), nil
}

// Day implements Source
func (s *TimescaleSource) Day(ctx context.Context, day time.Time) ([]Reading, error) {
	var rows []pvReading
	if err := s.dayQuery(ctx, day).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying database for readings: %w", err)
	}

	out := make([]Reading, len(rows))
	for i, r := range rows {
		out[i] = r.reading()
	}
	return out, nil
}

// Close releases the underlying connection pool
func (s *TimescaleSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
