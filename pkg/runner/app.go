package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SensorStat/internal/domain/models"
	"SensorStat/pkg/config"
	applogger "SensorStat/pkg/logger"
)

// ErrNoInput is returned when neither config nor arguments name a file.
var ErrNoInput = errors.New("no input files")

// FileProcessor handles one input file end to end.
type FileProcessor interface {
	Process(ctx context.Context, path string) (*models.FileReport, error)
	Close() error
}

// TextfileWriter persists collected metrics at the end of a run.
type TextfileWriter interface {
	WriteTextfile(path string) error
}

// App encapsulates one batch run.
type App struct {
	cfg       *config.Config
	processor FileProcessor
	metrics   TextfileWriter
	log       *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, processor FileProcessor, metrics TextfileWriter, log *applogger.Logger) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:       cfg,
		processor: processor,
		metrics:   metrics,
		log:       log,
	}
}

// Files returns the files to process: extra when given, the configured list otherwise.
func (a *App) Files(extra []string) []string {
	if len(extra) > 0 {
		return extra
	}
	return a.cfg.Files
}

// Run processes every file in order. The first error stops the run: later
// files are not touched. Resources are released on every path.
func (a *App) Run(ctx context.Context, extra []string) (err error) {
	files := a.Files(extra)
	if len(files) == 0 {
		return ErrNoInput
	}

	start := time.Now()
	defer func() {
		if cerr := a.shutdown(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	a.log.Info("batch started", applogger.Int("files", len(files)), applogger.Strings("sinks", a.cfg.Report.Sinks))

	for i, file := range files {
		if _, err := a.processor.Process(ctx, file); err != nil {
			if models.IsFatal(err) {
				a.log.Error("input unusable, aborting run",
					applogger.String("file", file),
					applogger.Int("remaining", len(files)-i-1),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("process %s: %w", file, err)
		}
	}

	a.log.Info("batch finished", applogger.Int("files", len(files)), applogger.Duration("elapsed_ms", time.Since(start)))
	return nil
}

func (a *App) shutdown() error {
	var errs []error
	if err := a.processor.Close(); err != nil {
		a.log.Warn("close reporters", applogger.Error(err))
	}
	if a.cfg.Metrics.Enabled && a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			errs = append(errs, err)
		} else {
			a.log.Debug("metrics written", applogger.String("path", a.cfg.Metrics.Textfile))
		}
	}
	return errors.Join(errs...)
}
