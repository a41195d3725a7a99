package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rcliao/lesson-studio/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	_, l, v := seedLesson(t, src)
	src.CreateCategory(ctx, CategoryParams{Name: "Nature"})
	src.PutVocabulary(ctx, model.Vocabulary{ID: "lion-1", Word: "lion"})
	src.ReplaceCheckpoints(ctx, v.ID, []model.Checkpoint{
		{TimeSec: 12, Content: model.VocabContent{VocabID: "lion-1"}},
		note("", 20, "end"),
	})

	snap, err := src.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst, err := NewSQLiteStore(filepath.Join(t.TempDir(), "copy.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dst.Close()

	n, err := dst.Import(ctx, snap)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	// category, vocab, unit, lesson, version, two checkpoints
	if n != 7 {
		t.Errorf("expected 7 rows imported, got %d", n)
	}

	lessons, _ := dst.ListLessons(ctx)
	if len(lessons) != 1 || lessons[0].ID != l.ID || lessons[0].CurrentVersionID != v.ID {
		t.Errorf("lesson not preserved: %+v", lessons)
	}
	cps := checkpointsOf(t, dst, v.ID)
	if len(cps) != 2 || cps[0].VocabID() != "lion-1" {
		t.Errorf("checkpoints not preserved: %+v", cps)
	}

	again, err := dst.Import(ctx, snap)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if again != 0 {
		t.Errorf("expected existing rows to be skipped, got %d inserted", again)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, _, v := seedLesson(t, s)
	s.ReplaceCheckpoints(ctx, v.ID, []model.Checkpoint{
		note("", 1, "a"),
		note("", 2, "b"),
		{TimeSec: 3, Content: model.VocabContent{VocabID: "x"}},
	})

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Units != 1 || st.Lessons != 1 || st.Versions != 1 || st.Checkpoints != 3 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if len(st.ByType) != 2 || st.ByType[0].Type != "note" || st.ByType[0].Count != 2 {
		t.Errorf("unexpected type breakdown: %+v", st.ByType)
	}
	if st.Dialect != DialectSQLite || st.DBPath == "" {
		t.Errorf("unexpected dialect/path: %s %q", st.Dialect, st.DBPath)
	}
}
