package editor

import (
	"github.com/samber/lo"

	"github.com/rcliao/lesson-studio/internal/content"
	"github.com/rcliao/lesson-studio/internal/model"
)

// WorkingCopy is the unsaved state of one lesson: its title, the current
// version's metadata and the checkpoint set.
type WorkingCopy struct {
	LessonID    string
	VersionID   string
	Title       string
	LoadedTitle string
	VideoURL    string
	DurationSec int
	Difficulty  model.Difficulty
	Vocabulary  []model.Vocabulary
	Checkpoints *CheckpointSet

	// VocabLoaded is set when Vocabulary came from a successful lookup.
	// Otherwise StoredVocabIDs are written back untouched.
	VocabLoaded    bool
	StoredVocabIDs []string
}

// NewWorkingCopy detaches a working copy from an assembled lesson.
func NewWorkingCopy(ln *content.LessonNode) *WorkingCopy {
	wc := &WorkingCopy{
		LessonID:    ln.ID,
		Title:       ln.Title,
		LoadedTitle: ln.Title,
		Difficulty:  model.DifficultyIntermediate,
		Vocabulary:  append([]model.Vocabulary{}, ln.Vocabulary...),
		Checkpoints: NewCheckpointSet(nil),
		VocabLoaded: ln.VocabularyLoaded,
	}
	if v := ln.Version; v != nil {
		wc.VersionID = v.ID
		wc.VideoURL = v.VideoURL
		wc.DurationSec = v.DurationSec
		wc.Difficulty = v.Difficulty
		wc.Checkpoints = NewCheckpointSet(v.Checkpoints)
		wc.StoredVocabIDs = append([]string(nil), v.VocabIDs...)
	}
	return wc
}

// TitleChanged reports whether the title differs from the loaded one.
func (wc *WorkingCopy) TitleChanged() bool { return wc.Title != wc.LoadedTitle }

// VocabIDs lists the ids of the target vocabulary. Without a loaded
// vocabulary the stored ids are returned as they are.
func (wc *WorkingCopy) VocabIDs() []string {
	if !wc.VocabLoaded {
		return model.UniqueIDs(wc.StoredVocabIDs)
	}
	return model.UniqueIDs(lo.Map(wc.Vocabulary, func(v model.Vocabulary, _ int) string { return v.ID }))
}

// CheckpointsForSave returns the sorted checkpoints bound to the version.
func (wc *WorkingCopy) CheckpointsForSave() []model.Checkpoint {
	cps := wc.Checkpoints.Sorted()
	for i := range cps {
		cps[i].LessonVersionID = wc.VersionID
	}
	return cps
}
