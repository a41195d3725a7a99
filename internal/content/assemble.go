// Package content joins the flat content collections into the
// Unit -> Lesson -> Version -> Checkpoint tree the editor works on.
package content

import (
	"sort"

	"github.com/samber/lo"

	"github.com/rcliao/lesson-studio/internal/model"
)

// Tree is the assembled content, units in display order.
type Tree struct {
	Categories []model.Category `json:"categories"`
	Units      []*UnitNode      `json:"units"`
}

// UnitNode is a unit with its lessons and category display fields.
type UnitNode struct {
	model.Unit
	CategoryName  string        `json:"category_name,omitempty"`
	CategoryColor string        `json:"category_color,omitempty"`
	Lessons       []*LessonNode `json:"lessons"`
}

// LessonNode is a lesson with its resolved version and derived display
// fields.
type LessonNode struct {
	model.Lesson
	Version         *VersionNode       `json:"version,omitempty"`
	DurationText    string             `json:"duration_text"`
	DifficultyLabel string             `json:"difficulty_label"`
	Vocabulary      []model.Vocabulary `json:"vocabulary"`

	// VocabularyLoaded is false when no vocabulary lookup succeeded, in
	// which case Vocabulary is empty but the version's ids still stand.
	VocabularyLoaded bool `json:"-"`
}

// VersionNode is a lesson version with its checkpoints sorted by time.
type VersionNode struct {
	model.LessonVersion
	Checkpoints []model.Checkpoint `json:"checkpoints"`
}

// Collections are the flat inputs of Assemble.
type Collections struct {
	Categories  []model.Category
	Units       []model.Unit
	Lessons     []model.Lesson
	Versions    []model.LessonVersion
	Checkpoints []model.Checkpoint
	Vocabulary  []model.Vocabulary

	// VocabularyLoaded marks Vocabulary as the result of a successful lookup.
	VocabularyLoaded bool
}

// Fallback records a lesson whose current version id did not resolve.
type Fallback struct {
	LessonID          string
	CurrentVersionID  string
	ResolvedVersionID string
}

// Assemble builds the tree. Lessons whose current version pointer does not
// resolve get the first version found for them instead; those cases are
// returned as fallbacks.
func Assemble(in Collections) (*Tree, []Fallback) {
	units := append([]model.Unit(nil), in.Units...)
	sort.SliceStable(units, func(i, j int) bool { return units[i].Order < units[j].Order })
	lessons := append([]model.Lesson(nil), in.Lessons...)
	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })

	categories := lo.KeyBy(in.Categories, func(c model.Category) string { return c.ID })
	var vocab map[string]model.Vocabulary
	if in.VocabularyLoaded {
		vocab = lo.KeyBy(in.Vocabulary, func(v model.Vocabulary) string { return v.ID })
	}
	lessonsByUnit := lo.GroupBy(lessons, func(l model.Lesson) string { return l.UnitID })
	versionsByID := lo.KeyBy(in.Versions, func(v model.LessonVersion) string { return v.ID })
	cpsByVersion := lo.GroupBy(in.Checkpoints, func(cp model.Checkpoint) string { return cp.LessonVersionID })

	firstVersion := map[string]model.LessonVersion{}
	for _, v := range in.Versions {
		if _, ok := firstVersion[v.LessonID]; !ok {
			firstVersion[v.LessonID] = v
		}
	}

	tree := &Tree{
		Categories: append([]model.Category(nil), in.Categories...),
		Units:      make([]*UnitNode, 0, len(units)),
	}
	var fallbacks []Fallback

	for _, u := range units {
		un := &UnitNode{Unit: u, Lessons: []*LessonNode{}}
		if c, ok := categories[u.CategoryID]; ok {
			un.CategoryName, un.CategoryColor = c.Name, c.ColorCode
		}

		for _, l := range lessonsByUnit[u.ID] {
			ln := &LessonNode{Lesson: l}
			v, ok := versionsByID[l.CurrentVersionID]
			if !ok || v.LessonID != l.ID {
				v, ok = firstVersion[l.ID]
				if ok {
					fallbacks = append(fallbacks, Fallback{
						LessonID:          l.ID,
						CurrentVersionID:  l.CurrentVersionID,
						ResolvedVersionID: v.ID,
					})
				}
			}
			if ok {
				cps := append([]model.Checkpoint(nil), cpsByVersion[v.ID]...)
				SortCheckpoints(cps)
				ln.Version = &VersionNode{LessonVersion: v.Clone(), Checkpoints: cps}
			}
			ln.derive(vocab)
			un.Lessons = append(un.Lessons, ln)
		}
		tree.Units = append(tree.Units, un)
	}
	return tree, fallbacks
}

// SortCheckpoints orders cps by time, keeping the relative order of ties.
func SortCheckpoints(cps []model.Checkpoint) {
	sort.SliceStable(cps, func(i, j int) bool { return cps[i].TimeSec < cps[j].TimeSec })
}

// derive recomputes the display fields from the resolved version. A nil vocab
// means no lookup is available.
func (ln *LessonNode) derive(vocab map[string]model.Vocabulary) {
	var v model.LessonVersion
	if ln.Version != nil {
		v = ln.Version.LessonVersion
	}
	ln.DurationText = model.FormatDuration(v.DurationSec)
	ln.DifficultyLabel = v.Difficulty.Label()
	ln.Vocabulary = Hydrate(v.VocabIDs, vocab)
	ln.VocabularyLoaded = vocab != nil
}

// Hydrate resolves ids against vocab, silently dropping the ones that do
// not resolve.
func Hydrate(ids []string, vocab map[string]model.Vocabulary) []model.Vocabulary {
	return lo.FilterMap(ids, func(id string, _ int) (model.Vocabulary, bool) {
		v, ok := vocab[id]
		return v, ok
	})
}

// Clone returns a copy of ln that shares nothing with the tree.
func (ln *LessonNode) Clone() *LessonNode {
	out := *ln
	out.Vocabulary = append([]model.Vocabulary(nil), ln.Vocabulary...)
	if ln.Version != nil {
		vn := &VersionNode{LessonVersion: ln.Version.LessonVersion.Clone()}
		vn.Checkpoints = make([]model.Checkpoint, len(ln.Version.Checkpoints))
		for i, cp := range ln.Version.Checkpoints {
			vn.Checkpoints[i] = cp.Clone()
		}
		out.Version = vn
	}
	return &out
}
