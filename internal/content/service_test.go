package content

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcliao/lesson-studio/internal/metrics"
	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/store"
)

var errStorage = errors.New("storage unreachable")

// faultyStore fails the operations named in fail and delegates the rest.
type faultyStore struct {
	store.Store
	fail map[string]bool
}

func (f *faultyStore) UpdateUnit(ctx context.Context, id string, p store.UnitPatch) error {
	if f.fail["update_unit"] {
		return errStorage
	}
	return f.Store.UpdateUnit(ctx, id, p)
}

func (f *faultyStore) DeleteUnit(ctx context.Context, id string) error {
	if f.fail["delete_unit"] {
		return errStorage
	}
	return f.Store.DeleteUnit(ctx, id)
}

func (f *faultyStore) UpdateLessonVersion(ctx context.Context, id string, p store.VersionPatch) error {
	if f.fail["update_lesson_version"] {
		return errStorage
	}
	return f.Store.UpdateLessonVersion(ctx, id, p)
}

func (f *faultyStore) ListVocabulary(ctx context.Context) ([]model.Vocabulary, error) {
	if f.fail["list_vocabulary"] {
		return nil, errStorage
	}
	return f.Store.ListVocabulary(ctx)
}

func newTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestService(t *testing.T) (*Service, *faultyStore, *metrics.Metrics) {
	t.Helper()
	repo := &faultyStore{Store: newTestStore(t), fail: map[string]bool{}}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(repo, Options{Vocabulary: repo, Metrics: m})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc, repo, m
}

func TestCreateAndAnnotateScenario(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	sql := repo.Store.(*store.SQLStore)

	cat, _ := sql.CreateCategory(ctx, store.CategoryParams{Name: "X", ColorCode: "#f00"})
	svc.Reload(ctx)

	unit, err := svc.CreateUnit(ctx, store.UnitParams{Title: "Animals", CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("create unit: %v", err)
	}
	if unit.CategoryName != "X" {
		t.Errorf("expected category name on new unit, got %q", unit.CategoryName)
	}
	lesson, err := svc.AddLesson(ctx, unit.ID, store.LessonParams{Title: "Lions"})
	if err != nil {
		t.Fatalf("add lesson: %v", err)
	}
	v := lesson.Version
	if v.Status != model.StatusDraft || v.VersionNumber != 1 || len(v.Checkpoints) != 0 {
		t.Fatalf("unexpected initial version %+v", v)
	}
	if got := svc.Tree().Units[0].Lessons; len(got) != 1 || got[0].ID != lesson.ID {
		t.Fatalf("lesson not added to tree: %+v", got)
	}

	cp := model.Checkpoint{ID: "placeholder", TimeSec: 12, Content: model.VocabContent{VocabID: "lion-1"}}
	if err := svc.SaveCheckpoints(ctx, v.ID, []model.Checkpoint{cp}); err != nil {
		t.Fatalf("save checkpoints: %v", err)
	}

	reloaded, ok := svc.Lesson(lesson.ID)
	if !ok {
		t.Fatal("lesson missing after reload")
	}
	cps := reloaded.Version.Checkpoints
	if len(cps) != 1 || cps[0].TimeSec != 12 || cps[0].VocabID() != "lion-1" {
		t.Fatalf("expected one vocab checkpoint at 12, got %+v", cps)
	}
	if cps[0].ID == "placeholder" {
		t.Error("expected store-issued checkpoint id after reload")
	}
}

func TestUpdateLessonVersionRecomputesDerivedFields(t *testing.T) {
	ctx := context.Background()
	svc, repo, m := newTestService(t)
	sql := repo.Store.(*store.SQLStore)
	sql.PutVocabulary(ctx, model.Vocabulary{ID: "lion-1", Word: "lion"})
	svc.Reload(ctx)

	unit, _ := svc.CreateUnit(ctx, store.UnitParams{Title: "Animals"})
	lesson, _ := svc.AddLesson(ctx, unit.ID, store.LessonParams{Title: "Lions"})

	err := svc.UpdateLessonVersion(ctx, lesson.Version.ID, store.VersionPatch{
		DurationSec: lo.ToPtr(3725),
		Difficulty:  lo.ToPtr(model.DifficultyProfessional),
		VocabIDs:    &[]string{"lion-1", "unknown"},
	})
	if err != nil {
		t.Fatalf("update version: %v", err)
	}

	ln, _ := svc.Lesson(lesson.ID)
	if ln.DurationText != "1:02:05" || ln.DifficultyLabel != "Professional" {
		t.Errorf("unexpected derived fields %q %q", ln.DurationText, ln.DifficultyLabel)
	}
	if len(ln.Vocabulary) != 1 || ln.Vocabulary[0].Word != "lion" {
		t.Errorf("expected hydrated lion only, got %+v", ln.Vocabulary)
	}
	if got := testutil.ToFloat64(m.RepositoryCalls.WithLabelValues("update_lesson_version", metrics.OutcomeOK)); got != 1 {
		t.Errorf("expected one ok update_lesson_version, got %v", got)
	}
}

func TestRepositoryFailureLeavesTreeUntouched(t *testing.T) {
	ctx := context.Background()
	svc, repo, m := newTestService(t)

	unit, _ := svc.CreateUnit(ctx, store.UnitParams{Title: "Animals"})
	lesson, _ := svc.AddLesson(ctx, unit.ID, store.LessonParams{Title: "Lions"})

	repo.fail["update_unit"] = true
	repo.fail["delete_unit"] = true
	repo.fail["update_lesson_version"] = true

	if err := svc.UpdateUnit(ctx, unit.ID, store.UnitPatch{Title: lo.ToPtr("Plants")}); !errors.Is(err, errStorage) {
		t.Errorf("expected storage error, got %v", err)
	}
	if err := svc.DeleteUnit(ctx, unit.ID); !errors.Is(err, errStorage) {
		t.Errorf("expected storage error, got %v", err)
	}
	if err := svc.UpdateLessonVersion(ctx, lesson.Version.ID, store.VersionPatch{VideoURL: lo.ToPtr("x.mp4")}); err == nil {
		t.Error("expected error")
	}

	units := svc.Tree().Units
	if len(units) != 1 || units[0].Title != "Animals" {
		t.Fatalf("tree changed after failures: %+v", units)
	}
	ln, _ := svc.Lesson(lesson.ID)
	if ln.Version.VideoURL != "" {
		t.Errorf("version changed after failure: %q", ln.Version.VideoURL)
	}
	if got := testutil.ToFloat64(m.RepositoryCalls.WithLabelValues("delete_unit", metrics.OutcomeError)); got != 1 {
		t.Errorf("expected one failed delete_unit, got %v", got)
	}
}

func TestUnitAndLessonMutations(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	a, _ := svc.CreateUnit(ctx, store.UnitParams{Title: "A"})
	b, _ := svc.CreateUnit(ctx, store.UnitParams{Title: "B"})
	l1, _ := svc.AddLesson(ctx, a.ID, store.LessonParams{Title: "one"})
	l2, _ := svc.AddLesson(ctx, a.ID, store.LessonParams{Title: "two"})

	if err := svc.UpdateLesson(ctx, l1.ID, store.LessonPatch{Title: lo.ToPtr("uno"), Order: lo.ToPtr(5)}); err != nil {
		t.Fatalf("update lesson: %v", err)
	}
	lessons := svc.Tree().Units[0].Lessons
	if lessons[0].ID != l2.ID || lessons[1].Title != "uno" {
		t.Errorf("expected reordered lessons, got %s,%s", lessons[0].Title, lessons[1].Title)
	}

	if err := svc.DeleteLesson(ctx, l2.ID); err != nil {
		t.Fatalf("delete lesson: %v", err)
	}
	if err := svc.DeleteUnit(ctx, b.ID); err != nil {
		t.Fatalf("delete unit: %v", err)
	}

	// The incremental tree must match a fresh assembly.
	incremental := svc.Tree()
	if err := svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	fresh := svc.Tree()
	if len(incremental.Units) != len(fresh.Units) || len(fresh.Units) != 1 {
		t.Fatalf("expected one unit, got %d vs %d", len(incremental.Units), len(fresh.Units))
	}
	if len(fresh.Units[0].Lessons) != 1 || fresh.Units[0].Lessons[0].Title != "uno" {
		t.Errorf("unexpected lessons after reload: %+v", fresh.Units[0].Lessons)
	}
}

func TestLoadLogsVersionFallback(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)
	u, _ := repo.CreateUnit(ctx, store.UnitParams{Title: "Animals"})
	l, v, _ := repo.CreateLesson(ctx, u.ID, store.LessonParams{Title: "Lions"})

	snap, _ := repo.ExportAll(ctx)
	snap.Lessons[0].CurrentVersionID = "dangling"
	repo.DeleteLesson(ctx, l.ID)
	repo.Import(ctx, snap)

	core, logs := observer.New(zap.WarnLevel)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(repo, Options{Logger: zap.New(core), Metrics: m})
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	ln, _ := svc.Lesson(l.ID)
	if ln.Version == nil || ln.Version.ID != v.ID {
		t.Fatalf("expected fallback to %s, got %+v", v.ID, ln.Version)
	}
	if logs.FilterField(zap.String("current_version_id", "dangling")).Len() != 1 {
		t.Errorf("expected one fallback warning, got %d logs", logs.Len())
	}
	if got := testutil.ToFloat64(m.VersionFallbacks); got != 1 {
		t.Errorf("expected fallback counter 1, got %v", got)
	}
}

func TestVocabularyFailureSkipsHydration(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	unit, _ := svc.CreateUnit(ctx, store.UnitParams{Title: "Animals"})
	lesson, _ := svc.AddLesson(ctx, unit.ID, store.LessonParams{Title: "Lions"})
	repo.Store.(*store.SQLStore).PutVocabulary(ctx, model.Vocabulary{ID: "lion-1", Word: "lion"})
	svc.UpdateLessonVersion(ctx, lesson.Version.ID, store.VersionPatch{VocabIDs: &[]string{"lion-1"}})

	repo.fail["list_vocabulary"] = true
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("reload should tolerate vocabulary failure: %v", err)
	}
	ln, _ := svc.Lesson(lesson.ID)
	if len(ln.Vocabulary) != 0 {
		t.Errorf("expected no hydrated vocabulary, got %+v", ln.Vocabulary)
	}
	if len(ln.Version.VocabIDs) != 1 {
		t.Errorf("vocab ids must survive, got %v", ln.Version.VocabIDs)
	}
	if svc.VocabularyLoaded() || ln.VocabularyLoaded {
		t.Error("expected vocabulary to be reported as not loaded")
	}

	repo.fail["list_vocabulary"] = false
	if err := svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if ln, _ := svc.Lesson(lesson.ID); !ln.VocabularyLoaded || len(ln.Vocabulary) != 1 {
		t.Errorf("expected hydration after recovery, got %+v", ln.Vocabulary)
	}
}

func TestMoveUnitToCategoryPlacesItLast(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	a, _ := svc.CreateUnit(ctx, store.UnitParams{Title: "A", CategoryID: "x"})
	b, _ := svc.CreateUnit(ctx, store.UnitParams{Title: "B", CategoryID: "y"})
	if err := svc.UpdateUnit(ctx, a.ID, store.UnitPatch{CategoryID: lo.ToPtr("y")}); err != nil {
		t.Fatalf("move unit: %v", err)
	}

	units := svc.Tree().Units
	if units[0].ID != b.ID || units[1].ID != a.ID {
		t.Fatalf("expected B before A, got %s,%s", units[0].Title, units[1].Title)
	}
	if units[1].Order != 2 || units[1].CategoryID != "y" {
		t.Errorf("expected A at order 2 in y, got %d in %q", units[1].Order, units[1].CategoryID)
	}

	// The incremental tree must match a fresh assembly.
	if err := svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	fresh := svc.Tree().Units
	if fresh[0].ID != b.ID || fresh[1].ID != a.ID || fresh[1].Order != 2 {
		t.Errorf("unexpected units after reload: %+v, %+v", fresh[0].Unit, fresh[1].Unit)
	}
}
