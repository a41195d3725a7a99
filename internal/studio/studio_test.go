package studio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/samber/lo"

	"github.com/rcliao/lesson-studio/internal/commit"
	"github.com/rcliao/lesson-studio/internal/content"
	"github.com/rcliao/lesson-studio/internal/editor"
	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/session"
	"github.com/rcliao/lesson-studio/internal/store"
)

type fakePlayer struct {
	seeks  []float64
	pauses int
}

func (p *fakePlayer) SeekTo(sec float64) { p.seeks = append(p.seeks, sec) }
func (p *fakePlayer) Pause()             { p.pauses++ }

type failingLessons struct {
	store.Store
}

func (failingLessons) UpdateLesson(context.Context, string, store.LessonPatch) error {
	return errors.New("storage unreachable")
}

type fixture struct {
	store    *store.SQLStore
	content  *content.Service
	lessonID string
	player   *fakePlayer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	s.PutVocabulary(ctx, model.Vocabulary{ID: "lion-1", Word: "lion"})
	u, _ := s.CreateUnit(ctx, store.UnitParams{Title: "Animals"})
	l, v, _ := s.CreateLesson(ctx, u.ID, store.LessonParams{Title: "Lions"})
	s.UpdateLessonVersion(ctx, v.ID, store.VersionPatch{DurationSec: lo.ToPtr(120)})

	svc := content.NewService(s, content.Options{Vocabulary: s})
	if err := svc.Load(ctx); err != nil {
		t.Fatal(err)
	}
	return &fixture{store: s, content: svc, lessonID: l.ID, player: &fakePlayer{}}
}

func (f *fixture) open(t *testing.T, repo commit.Repository, opts Options) *Session {
	t.Helper()
	if repo == nil {
		repo = f.store
	}
	s, err := Open(f.content, commit.New(repo, f.content, nil, nil), f.player, f.lessonID, opts)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s
}

func TestAuthorCheckpointAtPlayHeadAndSave(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, nil, Options{})

	if s.Timeline.Duration() != 120 {
		t.Fatalf("expected duration from version, got %v", s.Timeline.Duration())
	}
	s.Timeline.OnProgress(12.6)
	if _, err := s.NewCheckpointAt(nil); err != nil {
		t.Fatal(err)
	}
	if f.player.pauses != 1 || s.Editor.State() != editor.OpenNew {
		t.Fatalf("expected paused player and open editor, got %d %s", f.player.pauses, s.Editor.State())
	}
	s.Editor.SetVocabID("lion-1")
	cp, err := s.SubmitCheckpoint()
	if err != nil {
		t.Fatal(err)
	}
	if cp.TimeSec != 12 || s.WorkingCopy().Checkpoints.Len() != 1 {
		t.Fatalf("unexpected checkpoint %+v", cp)
	}

	if unknown := s.SetVocabulary([]string{"lion-1", "zebra-9"}); len(unknown) != 1 || unknown[0] != "zebra-9" {
		t.Errorf("expected zebra-9 unknown, got %v", unknown)
	}
	if err := s.SetDifficulty("advanced"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDifficulty("Expert"); err == nil {
		t.Error("expected error for unknown difficulty")
	}

	res := s.Save(context.Background())
	if !res.OK() {
		t.Fatalf("save failed: %v", res.Err)
	}
	saved := s.WorkingCopy().Checkpoints.Sorted()
	if len(saved) != 1 || saved[0].ID == cp.ID {
		t.Errorf("expected working copy rebuilt with stored id, got %+v", saved)
	}
	if s.WorkingCopy().Difficulty != model.DifficultyAdvanced || len(s.WorkingCopy().Vocabulary) != 1 {
		t.Errorf("unexpected rebuilt working copy %+v", s.WorkingCopy())
	}
}

func TestInvalidDraftStaysOpen(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, nil, Options{})

	s.NewCheckpointAt(lo.ToPtr(5.0))
	s.Editor.SetType(model.CheckpointQuestion)
	if _, err := s.SubmitCheckpoint(); err == nil {
		t.Fatal("expected validation error")
	}
	if s.Editor.State() == editor.Closed || s.WorkingCopy().Checkpoints.Len() != 0 {
		t.Error("rejected draft must not close the editor or reach the working copy")
	}
}

func TestEditCheckpointSeeksAndReplaces(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, nil, Options{})

	s.NewCheckpointAt(lo.ToPtr(40.5))
	s.Editor.SetType(model.CheckpointNote)
	cp, _ := s.SubmitCheckpoint()

	if err := s.EditCheckpoint(cp.ID); err != nil {
		t.Fatal(err)
	}
	if s.Timeline.CurrentTime() != 40.5 {
		t.Errorf("expected seek to exact time, got %v", s.Timeline.CurrentTime())
	}
	s.Editor.SetNote("roar")
	s.SubmitCheckpoint()

	if s.WorkingCopy().Checkpoints.Len() != 1 {
		t.Fatalf("edit must replace, got %d checkpoints", s.WorkingCopy().Checkpoints.Len())
	}
	got, _ := s.WorkingCopy().Checkpoints.Get(cp.ID)
	if got.Content.(model.NoteContent).Note != "roar" {
		t.Errorf("unexpected content %+v", got.Content)
	}
	if ms := s.Markers(); len(ms) != 2 || ms[1].Fraction != ms[0].Fraction {
		t.Errorf("unexpected markers %+v", ms)
	}

	if err := s.RemoveCheckpoint(cp.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.JumpTo(cp.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFailedSaveKeepsWorkingCopy(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, failingLessons{f.store}, Options{})

	s.SetTitle("Big cats")
	s.NewCheckpointAt(lo.ToPtr(3.0))
	s.Editor.SetType(model.CheckpointNote)
	cp, _ := s.SubmitCheckpoint()

	res := s.Save(context.Background())
	if res.OK() {
		t.Fatal("expected failure")
	}
	wc := s.WorkingCopy()
	if wc.Title != "Big cats" || !wc.TitleChanged() {
		t.Errorf("title edit lost: %+v", wc)
	}
	if _, ok := wc.Checkpoints.Get(cp.ID); !ok {
		t.Error("working copy checkpoint lost after failed save")
	}

	// The tree still reflects what did persist.
	ln, _ := f.content.Lesson(f.lessonID)
	if ln.Title != "Lions" || len(ln.Version.Checkpoints) != 1 {
		t.Errorf("unexpected tree after partial save: %q %d", ln.Title, len(ln.Version.Checkpoints))
	}
}

func TestOpenRequiresAuthor(t *testing.T) {
	f := newFixture(t)
	auth := session.NewManager(nil)
	committer := commit.New(f.store, f.content, nil, nil)

	if _, err := Open(f.content, committer, f.player, f.lessonID, Options{Auth: auth}); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
	auth.Login("sam", session.RoleStudent)
	if _, err := Open(f.content, committer, f.player, f.lessonID, Options{Auth: auth}); !errors.Is(err, session.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	auth.Login("ana", session.RoleTeacher)
	if _, err := Open(f.content, committer, f.player, f.lessonID, Options{Auth: auth}); err != nil {
		t.Errorf("teacher should open: %v", err)
	}
	if _, err := Open(f.content, committer, f.player, "missing", Options{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetVocabularyWithoutLookupKeepsIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.content = content.NewService(f.store, content.Options{})
	if err := f.content.Load(ctx); err != nil {
		t.Fatal(err)
	}
	s := f.open(t, nil, Options{})

	if unknown := s.SetVocabulary([]string{"cub-2", "cub-2"}); len(unknown) != 0 {
		t.Errorf("ids cannot be checked without a lookup, got unknown %v", unknown)
	}
	if res := s.Save(ctx); !res.OK() {
		t.Fatalf("save failed: %v", res.Err)
	}

	versions, _ := f.store.ListVersions(ctx)
	if len(versions) != 1 || len(versions[0].VocabIDs) != 1 || versions[0].VocabIDs[0] != "cub-2" {
		t.Errorf("expected vocab ids [cub-2], got %+v", versions)
	}
}
