// Package cli implements the lesson-studio CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/lesson-studio/internal/commit"
	"github.com/rcliao/lesson-studio/internal/config"
	"github.com/rcliao/lesson-studio/internal/content"
	"github.com/rcliao/lesson-studio/internal/logging"
	"github.com/rcliao/lesson-studio/internal/metrics"
	"github.com/rcliao/lesson-studio/internal/session"
	"github.com/rcliao/lesson-studio/internal/store"
	"github.com/rcliao/lesson-studio/internal/studio"
	"github.com/rcliao/lesson-studio/internal/timeline"
)

var (
	dbPath     string
	driverFlag string
	configPath string
	formatFlag string
	debugFlag  bool

	cfg      config.Config
	logger   = zap.NewNop()
	registry = prometheus.NewRegistry()
	meters   = metrics.New(registry)
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lesson-studio",
	Short: "Author video lessons and their checkpoints",
	Long:  "Edit units, lessons and the time-indexed checkpoints of lesson videos. SQLite by default, PostgreSQL with --driver postgres.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DSN = dbPath
		}
		if driverFlag != "" {
			cfg.Driver = driverFlag
		}
		if debugFlag {
			cfg.Debug = true
		}
		if logger, err = logging.New(cfg.Debug); err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cfg.Debug {
			logMetrics()
		}
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path or URL (default: $LESSON_STUDIO_DSN or ~/.lesson-studio/studio.db)")
	RootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Database driver: sqlite or postgres")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Debug logging")
}

func openStore() (*store.SQLStore, error) {
	return store.Open(store.Dialect(cfg.Driver), cfg.DSN)
}

// openContent opens the store and loads the assembled tree.
func openContent(ctx context.Context) (*store.SQLStore, *content.Service) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	svc := content.NewService(s, content.Options{Vocabulary: s, Logger: logger, Metrics: meters})
	if err := svc.Load(ctx); err != nil {
		s.Close()
		exitErr("load content", err)
	}
	return s, svc
}

// requireAuthor logs in the configured user and checks they may edit.
func requireAuthor() *session.Manager {
	auth := session.NewManager(logger)
	if _, err := auth.Login(cfg.UserID, session.Role(cfg.Role)); err != nil {
		exitErr("login", err)
	}
	if _, err := auth.RequireAuthor(); err != nil {
		exitErr("login", err)
	}
	return auth
}

// openStudio starts an editing session on a lesson.
func openStudio(ctx context.Context, lessonID string) (*store.SQLStore, *studio.Session) {
	auth := requireAuthor()
	s, svc := openContent(ctx)
	committer := commit.New(s, svc, logger, meters)
	sess, err := studio.Open(svc, committer, headlessPlayer{}, lessonID, studio.Options{
		Auth:     auth,
		Timeline: timeline.Options{SeekTolerance: cfg.SeekTolerance},
		Logger:   logger,
	})
	if err != nil {
		s.Close()
		exitErr("open lesson", err)
	}
	return s, sess
}

// headlessPlayer stands in for the video player when editing from the
// command line.
type headlessPlayer struct{}

func (headlessPlayer) SeekTo(sec float64) { logger.Debug("seek", zap.Float64("sec", sec)) }
func (headlessPlayer) Pause()             { logger.Debug("pause") }

// logMetrics writes the counters collected during the command to the debug
// log.
func logMetrics() {
	families, err := registry.Gather()
	if err != nil {
		logger.Debug("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields, zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
			logger.Debug("metric", fields...)
		}
	}
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func textOutput() bool { return formatFlag == "text" }

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
