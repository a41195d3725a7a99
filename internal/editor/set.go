package editor

import (
	"sort"

	"github.com/rcliao/lesson-studio/internal/model"
)

type entry struct {
	cp  model.Checkpoint
	seq int
}

// CheckpointSet is the working set of a version's checkpoints, kept sorted
// by time. Ties keep insertion order; replacing a checkpoint keeps its place
// among equal times.
type CheckpointSet struct {
	entries []entry
	nextSeq int
}

// NewCheckpointSet copies cps in the given order.
func NewCheckpointSet(cps []model.Checkpoint) *CheckpointSet {
	s := &CheckpointSet{}
	for _, cp := range cps {
		s.Merge(cp)
	}
	return s
}

// Merge inserts cp, or replaces the checkpoint with the same id. It reports
// whether cp was new.
func (s *CheckpointSet) Merge(cp model.Checkpoint) bool {
	cp = cp.Clone()
	inserted := true
	if i := s.index(cp.ID); i >= 0 {
		s.entries[i].cp = cp
		inserted = false
	} else {
		s.entries = append(s.entries, entry{cp: cp, seq: s.nextSeq})
		s.nextSeq++
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		a, b := s.entries[i], s.entries[j]
		if a.cp.TimeSec != b.cp.TimeSec {
			return a.cp.TimeSec < b.cp.TimeSec
		}
		return a.seq < b.seq
	})
	return inserted
}

// Remove deletes the checkpoint with id and reports whether it existed.
func (s *CheckpointSet) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

func (s *CheckpointSet) Get(id string) (model.Checkpoint, bool) {
	if i := s.index(id); i >= 0 {
		return s.entries[i].cp.Clone(), true
	}
	return model.Checkpoint{}, false
}

// Sorted returns copies of the checkpoints in display order.
func (s *CheckpointSet) Sorted() []model.Checkpoint {
	out := make([]model.Checkpoint, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.cp.Clone()
	}
	return out
}

func (s *CheckpointSet) Len() int { return len(s.entries) }

func (s *CheckpointSet) index(id string) int {
	for i, e := range s.entries {
		if e.cp.ID == id {
			return i
		}
	}
	return -1
}
