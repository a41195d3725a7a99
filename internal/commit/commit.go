// Package commit writes a lesson's working copy back to the repository in
// one save action.
package commit

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rcliao/lesson-studio/internal/editor"
	"github.com/rcliao/lesson-studio/internal/metrics"
	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/store"
)

// Step names, also used as metric op labels.
const (
	StepReplaceCheckpoints = "replace_checkpoints"
	StepUpdateVersion      = "update_lesson_version"
	StepUpdateLesson       = "update_lesson"
	StepReload             = "reload"
)

// Repository is the part of the store a save writes to.
type Repository interface {
	ReplaceCheckpoints(ctx context.Context, versionID string, cps []model.Checkpoint) ([]model.Checkpoint, error)
	UpdateLessonVersion(ctx context.Context, id string, p store.VersionPatch) error
	UpdateLesson(ctx context.Context, id string, p store.LessonPatch) error
}

// Reloader re-fetches the assembled tree.
type Reloader interface {
	Reload(ctx context.Context) error
}

// StepResult is the outcome of one save step.
type StepResult struct {
	Name    string `json:"name"`
	Skipped bool   `json:"skipped,omitempty"`
	Err     error  `json:"-"`
}

// Result is the outcome of a save. Err is nil only when every attempted
// step succeeded; otherwise it combines the step errors.
type Result struct {
	Err   error        `json:"-"`
	Steps []StepResult `json:"steps"`
}

// OK reports overall success.
func (r Result) OK() bool { return r.Err == nil }

// Errors lists the individual step failures.
func (r Result) Errors() []error { return multierr.Errors(r.Err) }

// Controller runs the save steps.
type Controller struct {
	repo    Repository
	content Reloader
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New returns a save controller. logger and m may be nil.
func New(repo Repository, content Reloader, logger *zap.Logger, m *metrics.Metrics) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{repo: repo, content: content, logger: logger, metrics: m}
}

// Save writes wc in strict order: the checkpoint set, the version metadata
// (when the version has an id), the lesson title (when it changed), then a
// full reload. Every step runs even after an earlier one failed, and steps
// that succeeded stay persisted. wc itself is never modified.
func (c *Controller) Save(ctx context.Context, wc *editor.WorkingCopy) Result {
	var res Result
	run := func(name string, fn func() error) {
		err := fn()
		c.metrics.Observe(name, err)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
			res.Err = multierr.Append(res.Err, err)
		}
		res.Steps = append(res.Steps, StepResult{Name: name, Err: err})
	}
	skip := func(name string) {
		res.Steps = append(res.Steps, StepResult{Name: name, Skipped: true})
	}

	cps := wc.CheckpointsForSave()
	run(StepReplaceCheckpoints, func() error {
		_, err := c.repo.ReplaceCheckpoints(ctx, wc.VersionID, cps)
		return err
	})

	if wc.VersionID != "" {
		videoURL, difficulty, vocabIDs := wc.VideoURL, wc.Difficulty, wc.VocabIDs()
		run(StepUpdateVersion, func() error {
			return c.repo.UpdateLessonVersion(ctx, wc.VersionID, store.VersionPatch{
				VideoURL:   &videoURL,
				Difficulty: &difficulty,
				VocabIDs:   &vocabIDs,
			})
		})
	} else {
		skip(StepUpdateVersion)
	}

	if wc.TitleChanged() {
		title := wc.Title
		run(StepUpdateLesson, func() error {
			return c.repo.UpdateLesson(ctx, wc.LessonID, store.LessonPatch{Title: &title})
		})
	} else {
		skip(StepUpdateLesson)
	}

	run(StepReload, func() error { return c.content.Reload(ctx) })

	outcome := metrics.OutcomeOK
	if res.Err != nil {
		outcome = metrics.OutcomeError
		c.logger.Error("save failed",
			zap.String("lesson_id", wc.LessonID),
			zap.String("version_id", wc.VersionID),
			zap.Error(res.Err))
	} else {
		c.logger.Info("lesson saved",
			zap.String("lesson_id", wc.LessonID),
			zap.Int("checkpoints", len(cps)))
	}
	if c.metrics != nil {
		c.metrics.Saves.WithLabelValues(outcome).Inc()
		c.metrics.CheckpointsSaved.Observe(float64(len(cps)))
	}
	return res
}
