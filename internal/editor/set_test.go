package editor

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/rcliao/lesson-studio/internal/content"
	"github.com/rcliao/lesson-studio/internal/model"
)

func note(id string, at float64) model.Checkpoint {
	return model.Checkpoint{ID: id, TimeSec: at, Content: model.NoteContent{Note: id}}
}

func ids(cps []model.Checkpoint) string {
	s := ""
	for _, cp := range cps {
		s += cp.ID + " "
	}
	return s
}

func TestSetSortsAndKeepsTieOrder(t *testing.T) {
	s := NewCheckpointSet(nil)
	s.Merge(note("c", 10))
	s.Merge(note("a", 5))
	s.Merge(note("b", 10))
	s.Merge(note("d", 10))

	if got := ids(s.Sorted()); got != "a c b d " {
		t.Fatalf("unexpected order %q", got)
	}

	// Replacing keeps the tie position.
	if inserted := s.Merge(note("c", 10)); inserted {
		t.Error("expected replace, got insert")
	}
	if got := ids(s.Sorted()); got != "a c b d " {
		t.Errorf("replace moved tie: %q", got)
	}

	s.Merge(note("a", 12))
	if got := ids(s.Sorted()); got != "c b d a " {
		t.Errorf("unexpected order after move %q", got)
	}
}

func TestSetSortInvariantRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	s := NewCheckpointSet(nil)
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("cp-%d", r.Intn(40))
		s.Merge(note(id, float64(r.Intn(20))))
		if r.Intn(5) == 0 {
			s.Remove(fmt.Sprintf("cp-%d", r.Intn(40)))
		}
		cps := s.Sorted()
		for j := 1; j < len(cps); j++ {
			if cps[j].TimeSec < cps[j-1].TimeSec {
				t.Fatalf("step %d: not sorted at %d: %v", i, j, ids(cps))
			}
		}
	}
}

func TestSetRemoveAndGet(t *testing.T) {
	s := NewCheckpointSet([]model.Checkpoint{note("a", 5), note("b", 10), note("c", 15)})
	if !s.Remove("b") || s.Remove("b") {
		t.Error("unexpected remove result")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2, got %d", s.Len())
	}
	if _, ok := s.Get("b"); ok {
		t.Error("removed checkpoint still present")
	}
	cp, ok := s.Get("c")
	if !ok || cp.TimeSec != 15 {
		t.Errorf("unexpected get %+v", cp)
	}
}

func TestSetIsDetachedFromInput(t *testing.T) {
	q := model.Checkpoint{ID: "q", Content: model.QuestionContent{Question: "Q", Options: []string{"a"}}}
	s := NewCheckpointSet([]model.Checkpoint{q})
	q.Content.(model.QuestionContent).Options[0] = "changed"
	got, _ := s.Get("q")
	if got.Content.(model.QuestionContent).Options[0] != "a" {
		t.Error("set shares option slice with caller")
	}
}

func TestWorkingCopyFromLesson(t *testing.T) {
	ln := &content.LessonNode{
		Lesson: model.Lesson{ID: "l1", Title: "Lions"},
		Version: &content.VersionNode{
			LessonVersion: model.LessonVersion{ID: "v1", VideoURL: "a.mp4", Difficulty: model.DifficultyAdvanced},
			Checkpoints:   []model.Checkpoint{note("x", 3)},
		},
		Vocabulary:       []model.Vocabulary{{ID: "lion-1"}, {ID: "cub-1"}, {ID: "lion-1"}},
		VocabularyLoaded: true,
	}
	wc := NewWorkingCopy(ln)
	if wc.VersionID != "v1" || wc.Difficulty != model.DifficultyAdvanced || wc.Checkpoints.Len() != 1 {
		t.Fatalf("unexpected working copy %+v", wc)
	}
	if wc.TitleChanged() {
		t.Error("fresh copy must not report a title change")
	}
	wc.Title = "Big cats"
	if !wc.TitleChanged() {
		t.Error("expected title change")
	}
	if got := wc.VocabIDs(); len(got) != 2 || got[0] != "lion-1" || got[1] != "cub-1" {
		t.Errorf("unexpected vocab ids %v", got)
	}
	for _, cp := range wc.CheckpointsForSave() {
		if cp.LessonVersionID != "v1" {
			t.Errorf("checkpoint %s not bound to version", cp.ID)
		}
	}

	ln.Version.Checkpoints[0].TimeSec = 99
	if got, _ := wc.Checkpoints.Get("x"); got.TimeSec != 3 {
		t.Error("working copy shares checkpoints with the tree")
	}
}

func TestWorkingCopyKeepsStoredVocabWithoutLookup(t *testing.T) {
	ln := &content.LessonNode{
		Lesson: model.Lesson{ID: "l1", Title: "Lions"},
		Version: &content.VersionNode{
			LessonVersion: model.LessonVersion{ID: "v1", VocabIDs: []string{"lion-1", "mane-2"}},
		},
		Vocabulary: []model.Vocabulary{},
	}
	wc := NewWorkingCopy(ln)
	if got := wc.VocabIDs(); len(got) != 2 || got[0] != "lion-1" || got[1] != "mane-2" {
		t.Errorf("expected stored ids to survive, got %v", got)
	}

	ln.Version.VocabIDs[0] = "changed"
	if wc.VocabIDs()[0] != "lion-1" {
		t.Error("stored vocab ids shared with lesson node")
	}
}
