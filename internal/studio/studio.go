// Package studio ties the timeline, the checkpoint editor and the save
// controller together for the one lesson being edited.
package studio

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rcliao/lesson-studio/internal/commit"
	"github.com/rcliao/lesson-studio/internal/content"
	"github.com/rcliao/lesson-studio/internal/editor"
	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/session"
	"github.com/rcliao/lesson-studio/internal/store"
	"github.com/rcliao/lesson-studio/internal/timeline"
)

// Player is the video player: it seeks for the timeline and pauses for the
// editor.
type Player interface {
	timeline.Player
	editor.Pauser
}

// Options configures a Session.
type Options struct {
	// Auth, when set, must hold a session allowed to author.
	Auth     *session.Manager
	Timeline timeline.Options
	Logger   *zap.Logger
}

// Session is the editing session of one lesson. It owns the working copy
// until Close.
type Session struct {
	Timeline *timeline.Controller
	Editor   *editor.Editor

	content *content.Service
	commit  *commit.Controller
	logger  *zap.Logger
	wc      *editor.WorkingCopy
}

// Open starts editing lessonID from the service's current tree.
func Open(svc *content.Service, committer *commit.Controller, player Player, lessonID string, opts Options) (*Session, error) {
	if opts.Auth != nil {
		if _, err := opts.Auth.RequireAuthor(); err != nil {
			return nil, err
		}
	}
	ln, ok := svc.Lesson(lessonID)
	if !ok {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, store.ErrNotFound)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeline.Logger == nil {
		opts.Timeline.Logger = logger
	}

	ed := editor.New(player)
	s := &Session{
		Editor:   ed,
		Timeline: timeline.New(player, ed, opts.Timeline),
		content:  svc,
		commit:   committer,
		logger:   logger.With(zap.String("lesson_id", lessonID)),
		wc:       editor.NewWorkingCopy(ln),
	}
	if d := s.wc.DurationSec; d > 0 {
		s.Timeline.OnReady(float64(d))
	}
	return s, nil
}

// WorkingCopy exposes the unsaved state. Mutate it through the session.
func (s *Session) WorkingCopy() *editor.WorkingCopy { return s.wc }

// NewCheckpointAt opens the editor for a new checkpoint at timeSec, or at the
// play-head when nil.
func (s *Session) NewCheckpointAt(timeSec *float64) (float64, error) {
	return s.Timeline.RequestNewCheckpointAt(timeSec)
}

// EditCheckpoint opens the editor on an existing checkpoint and moves the
// play-head to it.
func (s *Session) EditCheckpoint(id string) error {
	cp, ok := s.wc.Checkpoints.Get(id)
	if !ok {
		return fmt.Errorf("checkpoint %s: %w", id, store.ErrNotFound)
	}
	if err := s.Editor.OpenExisting(cp); err != nil {
		return err
	}
	s.Timeline.JumpTo(cp)
	return nil
}

// SubmitCheckpoint validates the editor's draft and merges it into the
// working copy. A validation error leaves the editor open.
func (s *Session) SubmitCheckpoint() (model.Checkpoint, error) {
	cp, err := s.Editor.Submit()
	if err != nil {
		return model.Checkpoint{}, err
	}
	cp.LessonVersionID = s.wc.VersionID
	s.wc.Checkpoints.Merge(cp)
	return cp, nil
}

// JumpTo seeks to a checkpoint of the working copy.
func (s *Session) JumpTo(id string) error {
	cp, ok := s.wc.Checkpoints.Get(id)
	if !ok {
		return fmt.Errorf("checkpoint %s: %w", id, store.ErrNotFound)
	}
	s.Timeline.JumpTo(cp)
	return nil
}

// RemoveCheckpoint drops a checkpoint from the working copy.
func (s *Session) RemoveCheckpoint(id string) error {
	if !s.wc.Checkpoints.Remove(id) {
		return fmt.Errorf("checkpoint %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// Markers places the play-head and the working copy's checkpoints.
func (s *Session) Markers() []timeline.Marker {
	return s.Timeline.Markers(s.wc.Checkpoints.Sorted())
}

func (s *Session) SetTitle(title string) { s.wc.Title = title }

func (s *Session) SetVideoURL(url string) { s.wc.VideoURL = url }

// SetDifficulty takes a display label or numeric code.
func (s *Session) SetDifficulty(label string) error {
	d, err := model.ParseDifficulty(label)
	if err != nil {
		return err
	}
	s.wc.Difficulty = d
	return nil
}

// SetVocabulary replaces the target vocabulary. Ids not in the loaded
// vocabulary are returned and left out. When no vocabulary is loaded the ids
// are kept unchecked.
func (s *Session) SetVocabulary(ids []string) (unknown []string) {
	ids = model.UniqueIDs(ids)
	if !s.content.VocabularyLoaded() {
		s.wc.Vocabulary = []model.Vocabulary{}
		s.wc.StoredVocabIDs = ids
		return nil
	}
	vocab := s.content.Vocabulary()
	s.wc.Vocabulary = content.Hydrate(ids, vocab)
	s.wc.VocabLoaded = true
	return lo.Reject(ids, func(id string, _ int) bool {
		_, ok := vocab[id]
		return ok
	})
}

// Save commits the working copy. On success the working copy is rebuilt from
// the reloaded tree so new checkpoints carry their stored ids; on failure it
// is kept as it was.
func (s *Session) Save(ctx context.Context) commit.Result {
	res := s.commit.Save(ctx, s.wc)
	if !res.OK() {
		s.logger.Warn("keeping working copy after failed save", zap.Int("failures", len(res.Errors())))
		return res
	}
	if ln, ok := s.content.Lesson(s.wc.LessonID); ok {
		s.wc = editor.NewWorkingCopy(ln)
	}
	return res
}

// Close abandons the session and its unsaved edits.
func (s *Session) Close() {
	s.Editor.Cancel()
	s.wc = nil
}
