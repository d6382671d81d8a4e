package readings

import (
	"errors"

	"go.uber.org/zap"

	"github.com/chrissnell/pvsizer/pkg/config"
)

// ErrNoSource is returned by Open when no backend is configured.
var ErrNoSource = errors.New("no readings source configured")

// Open returns the configured backend. TimescaleDB wins over SQLite, which
// wins over CSV.
func Open(cfg config.ReadingsData, logger *zap.SugaredLogger) (Source, error) {
	switch {
	case cfg.TimescaleDB != "":
		src, err := OpenTimescale(cfg.TimescaleDB, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	case cfg.SQLite != "":
		src, err := OpenSQLite(cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	case cfg.CSV != "":
		src, err := OpenCSV(cfg.CSV)
		if err != nil {
			return nil, err
		}
		logger.Infof("loaded %d readings from %s (%d rows skipped)", len(src.sorted), cfg.CSV, src.Skipped())
		return src, nil
	}
	return nil, ErrNoSource
}
