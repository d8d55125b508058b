package dataset

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"

	"district-dashboard/internal/models"
)

const cacheVersion = "v1"

// Loader reads the two dataset files, optionally through a gob snapshot cache.
type Loader struct {
	cacheDir string
	logger   *slog.Logger
}

// NewLoader returns a loader. An empty cacheDir disables the snapshot cache.
func NewLoader(cacheDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cacheDir: cacheDir, logger: logger}
}

type snapshot struct {
	Quarters  []models.QuarterRecord
	Timeslots []models.TimeslotRecord
	SavedAt   time.Time
}

// Load reads both CSV files concurrently and returns an immutable store.
func (l *Loader) Load(ctx context.Context, quarterPath, timeslotPath string) (*Store, error) {
	if snap, err := l.loadFromCache(quarterPath, timeslotPath); err == nil {
		if l.cacheFresh(snap, quarterPath, timeslotPath) {
			l.logger.Info("loaded dataset from cache",
				"quarter_records", len(snap.Quarters),
				"timeslot_records", len(snap.Timeslots),
			)
			return New(snap.Quarters, snap.Timeslots)
		}
	}

	start := time.Now()
	var (
		qdf, tdf  dataframe.DataFrame
		quarters  []models.QuarterRecord
		timeslots []models.TimeslotRecord
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		qdf, err = readFile(ctx, quarterPath, QuarterColumns(), quarterTypes())
		if err != nil {
			return fmt.Errorf("quarter csv: %w", err)
		}
		quarters, err = decodeQuarters(qdf)
		if err != nil {
			return fmt.Errorf("quarter csv %s: %w", quarterPath, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tdf, err = readFile(ctx, timeslotPath, TimeslotColumns(), timeslotTypes())
		if err != nil {
			return fmt.Errorf("timeslot csv: %w", err)
		}
		timeslots, err = decodeTimeslots(tdf)
		if err != nil {
			return fmt.Errorf("timeslot csv %s: %w", timeslotPath, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store, err := newStore(qdf, tdf, quarters, timeslots)
	if err != nil {
		return nil, err
	}

	if err := l.saveToCache(quarterPath, timeslotPath, snapshot{Quarters: quarters, Timeslots: timeslots, SavedAt: time.Now()}); err != nil {
		l.logger.Warn("failed to save dataset cache", "error", err)
	}

	l.logger.Info("dataset loaded",
		"quarter_records", len(quarters),
		"timeslot_records", len(timeslots),
		"duration", time.Since(start),
	)
	return store, nil
}

func readFile(ctx context.Context, path string, required []string, types map[string]series.Type) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	df, err := readFrame(f, required, types)
	if err != nil {
		return df, fmt.Errorf("%s: %w", path, err)
	}
	return df, nil
}

func (l *Loader) cacheFilename(quarterPath, timeslotPath string) string {
	key := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(quarterPath + "+" + timeslotPath)
	return filepath.Join(l.cacheDir, fmt.Sprintf("%s_%s.gob", key, cacheVersion))
}

func (l *Loader) cacheFresh(snap *snapshot, paths ...string) bool {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.ModTime().Before(snap.SavedAt) {
			return false
		}
	}
	return true
}

func (l *Loader) saveToCache(quarterPath, timeslotPath string, snap snapshot) error {
	if l.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(l.cacheFilename(quarterPath, timeslotPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(snap)
}

func (l *Loader) loadFromCache(quarterPath, timeslotPath string) (*snapshot, error) {
	if l.cacheDir == "" {
		return nil, os.ErrNotExist
	}
	file, err := os.Open(l.cacheFilename(quarterPath, timeslotPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
