package content

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rcliao/lesson-studio/internal/metrics"
	"github.com/rcliao/lesson-studio/internal/model"
	"github.com/rcliao/lesson-studio/internal/store"
)

// VocabularyLookup lists the vocabulary lessons and checkpoints refer to.
type VocabularyLookup interface {
	ListVocabulary(ctx context.Context) ([]model.Vocabulary, error)
}

// CategoryLookup lists the categories used for unit display.
type CategoryLookup interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// Options configures a Service. All fields are optional.
type Options struct {
	// Vocabulary enables hydration of target vocabulary. Nil disables it.
	Vocabulary VocabularyLookup
	// Categories defaults to the repository.
	Categories CategoryLookup
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Service holds the assembled tree and keeps it in step with the repository.
// A failed repository call leaves the tree untouched.
type Service struct {
	repo       store.Store
	vocabulary VocabularyLookup
	categories CategoryLookup
	logger     *zap.Logger
	metrics    *metrics.Metrics

	tree *Tree
	// vocab is nil until a vocabulary lookup succeeds.
	vocab map[string]model.Vocabulary
}

// NewService returns a service with an empty tree; call Load to fill it.
func NewService(repo store.Store, opts Options) *Service {
	s := &Service{
		repo:       repo,
		vocabulary: opts.Vocabulary,
		categories: opts.Categories,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		tree:       &Tree{Units: []*UnitNode{}},
	}
	if s.categories == nil {
		s.categories = repo
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Load fetches every collection and replaces the tree.
func (s *Service) Load(ctx context.Context) error {
	var in Collections
	var err error

	if in.Units, err = s.repo.ListUnits(ctx); err != nil {
		return s.fail("list_units", err)
	}
	if in.Lessons, err = s.repo.ListLessons(ctx); err != nil {
		return s.fail("list_lessons", err)
	}
	if in.Versions, err = s.repo.ListVersions(ctx); err != nil {
		return s.fail("list_versions", err)
	}
	if in.Checkpoints, err = s.repo.ListCheckpoints(ctx); err != nil {
		return s.fail("list_checkpoints", err)
	}
	if in.Categories, err = s.categories.ListCategories(ctx); err != nil {
		return s.fail("list_categories", err)
	}
	if s.vocabulary != nil {
		in.Vocabulary, err = s.vocabulary.ListVocabulary(ctx)
		if err != nil {
			s.logger.Warn("vocabulary unavailable, skipping hydration", zap.Error(err))
			in.Vocabulary = nil
		} else {
			in.VocabularyLoaded = true
		}
	}

	tree, fallbacks := Assemble(in)
	for _, f := range fallbacks {
		s.logger.Warn("current version did not resolve, using first version of lesson",
			zap.String("lesson_id", f.LessonID),
			zap.String("current_version_id", f.CurrentVersionID),
			zap.String("resolved_version_id", f.ResolvedVersionID))
		if s.metrics != nil {
			s.metrics.VersionFallbacks.Inc()
		}
	}

	s.tree = tree
	s.vocab = nil
	if in.VocabularyLoaded {
		s.vocab = lo.KeyBy(in.Vocabulary, func(v model.Vocabulary) string { return v.ID })
	}
	s.logger.Debug("content loaded",
		zap.Int("units", len(in.Units)),
		zap.Int("lessons", len(in.Lessons)),
		zap.Int("checkpoints", len(in.Checkpoints)))
	return nil
}

// Reload is a full re-fetch.
func (s *Service) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Tree returns the current tree. Callers must treat it as read-only and
// clone lessons they intend to edit.
func (s *Service) Tree() *Tree {
	return s.tree
}

// Lesson returns a detached copy of the lesson's node.
func (s *Service) Lesson(id string) (*LessonNode, bool) {
	_, ln := s.findLesson(id)
	if ln == nil {
		return nil, false
	}
	return ln.Clone(), true
}

// Vocabulary returns the loaded vocabulary keyed by id, or nil when the last
// load could not fetch it.
func (s *Service) Vocabulary() map[string]model.Vocabulary {
	return s.vocab
}

// VocabularyLoaded reports whether the last load hydrated vocabulary.
func (s *Service) VocabularyLoaded() bool {
	return s.vocab != nil
}

// CreateUnit stores a unit and adds it to the tree.
func (s *Service) CreateUnit(ctx context.Context, p store.UnitParams) (*UnitNode, error) {
	u, err := s.repo.CreateUnit(ctx, p)
	if err != nil {
		return nil, s.fail("create_unit", err)
	}
	s.metrics.Observe("create_unit", nil)

	un := &UnitNode{Unit: *u, Lessons: []*LessonNode{}}
	s.applyCategory(un)
	s.tree.Units = append(s.tree.Units, un)
	s.sortUnits()
	return un, nil
}

// UpdateUnit changes the unit in storage, then in the tree.
func (s *Service) UpdateUnit(ctx context.Context, id string, p store.UnitPatch) error {
	if err := s.repo.UpdateUnit(ctx, id, p); err != nil {
		return s.fail("update_unit", err)
	}
	s.metrics.Observe("update_unit", nil)

	un := s.findUnit(id)
	if un == nil {
		return nil
	}
	if p.Title != nil {
		un.Title = *p.Title
	}
	if p.Description != nil {
		un.Description = *p.Description
	}
	if p.IsPublished != nil {
		un.IsPublished = *p.IsPublished
	}
	if p.CategoryID != nil && *p.CategoryID != un.CategoryID {
		un.CategoryID = *p.CategoryID
		un.Order = s.nextUnitOrder(un)
		s.applyCategory(un)
		s.sortUnits()
	}
	return nil
}

// DeleteUnit removes the unit and everything under it.
func (s *Service) DeleteUnit(ctx context.Context, id string) error {
	if err := s.repo.DeleteUnit(ctx, id); err != nil {
		return s.fail("delete_unit", err)
	}
	s.metrics.Observe("delete_unit", nil)

	s.tree.Units = lo.Reject(s.tree.Units, func(un *UnitNode, _ int) bool { return un.ID == id })
	return nil
}

// AddLesson creates a lesson with its first version and adds it to the unit.
func (s *Service) AddLesson(ctx context.Context, unitID string, p store.LessonParams) (*LessonNode, error) {
	l, v, err := s.repo.CreateLesson(ctx, unitID, p)
	if err != nil {
		return nil, s.fail("create_lesson", err)
	}
	s.metrics.Observe("create_lesson", nil)

	ln := &LessonNode{
		Lesson:  *l,
		Version: &VersionNode{LessonVersion: *v, Checkpoints: []model.Checkpoint{}},
	}
	ln.derive(s.vocab)
	if un := s.findUnit(unitID); un != nil {
		un.Lessons = append(un.Lessons, ln)
		sortLessons(un)
	}
	return ln, nil
}

// UpdateLesson changes the lesson in storage, then in the tree.
func (s *Service) UpdateLesson(ctx context.Context, id string, p store.LessonPatch) error {
	if err := s.repo.UpdateLesson(ctx, id, p); err != nil {
		return s.fail("update_lesson", err)
	}
	s.metrics.Observe("update_lesson", nil)

	un, ln := s.findLesson(id)
	if ln == nil {
		return nil
	}
	if p.Title != nil {
		ln.Title = *p.Title
	}
	if p.Description != nil {
		ln.Description = *p.Description
	}
	if p.Order != nil {
		ln.Order = *p.Order
		sortLessons(un)
	}
	return nil
}

// UpdateLessonVersion changes the version in storage, then in the tree, and
// recomputes the lesson's display fields.
func (s *Service) UpdateLessonVersion(ctx context.Context, versionID string, p store.VersionPatch) error {
	if err := s.repo.UpdateLessonVersion(ctx, versionID, p); err != nil {
		return s.fail("update_lesson_version", err)
	}
	s.metrics.Observe("update_lesson_version", nil)

	ln := s.findVersion(versionID)
	if ln == nil {
		return nil
	}
	v := &ln.Version.LessonVersion
	if p.VideoURL != nil {
		v.VideoURL = *p.VideoURL
	}
	if p.Difficulty != nil {
		v.Difficulty = *p.Difficulty
	}
	if p.DurationSec != nil {
		v.DurationSec = *p.DurationSec
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.VocabIDs != nil {
		v.VocabIDs = model.UniqueIDs(*p.VocabIDs)
	}
	ln.derive(s.vocab)
	return nil
}

// DeleteLesson removes the lesson with its versions and checkpoints.
func (s *Service) DeleteLesson(ctx context.Context, id string) error {
	if err := s.repo.DeleteLesson(ctx, id); err != nil {
		return s.fail("delete_lesson", err)
	}
	s.metrics.Observe("delete_lesson", nil)

	if un, _ := s.findLesson(id); un != nil {
		un.Lessons = lo.Reject(un.Lessons, func(ln *LessonNode, _ int) bool { return ln.ID == id })
	}
	return nil
}

// SaveCheckpoints replaces the version's checkpoints and reloads the whole
// tree, since new checkpoints only get their ids from storage.
func (s *Service) SaveCheckpoints(ctx context.Context, versionID string, cps []model.Checkpoint) error {
	if _, err := s.repo.ReplaceCheckpoints(ctx, versionID, cps); err != nil {
		return s.fail("replace_checkpoints", err)
	}
	s.metrics.Observe("replace_checkpoints", nil)
	return s.Reload(ctx)
}

func (s *Service) fail(op string, err error) error {
	s.metrics.Observe(op, err)
	s.logger.Warn("repository call failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) applyCategory(un *UnitNode) {
	un.CategoryName, un.CategoryColor = "", ""
	for _, c := range s.tree.Categories {
		if c.ID == un.CategoryID {
			un.CategoryName, un.CategoryColor = c.Name, c.ColorCode
			return
		}
	}
}

// nextUnitOrder is one past the highest order among the other units of
// un's category, matching how storage places a moved unit.
func (s *Service) nextUnitOrder(un *UnitNode) int {
	order := 0
	for _, other := range s.tree.Units {
		if other != un && other.CategoryID == un.CategoryID && other.Order > order {
			order = other.Order
		}
	}
	return order + 1
}

func (s *Service) sortUnits() {
	sort.SliceStable(s.tree.Units, func(i, j int) bool { return s.tree.Units[i].Order < s.tree.Units[j].Order })
}

func sortLessons(un *UnitNode) {
	sort.SliceStable(un.Lessons, func(i, j int) bool { return un.Lessons[i].Order < un.Lessons[j].Order })
}

func (s *Service) findUnit(id string) *UnitNode {
	for _, un := range s.tree.Units {
		if un.ID == id {
			return un
		}
	}
	return nil
}

func (s *Service) findLesson(id string) (*UnitNode, *LessonNode) {
	for _, un := range s.tree.Units {
		for _, ln := range un.Lessons {
			if ln.ID == id {
				return un, ln
			}
		}
	}
	return nil, nil
}

func (s *Service) findVersion(versionID string) *LessonNode {
	for _, un := range s.tree.Units {
		for _, ln := range un.Lessons {
			if ln.Version != nil && ln.Version.ID == versionID {
				return ln
			}
		}
	}
	return nil
}
