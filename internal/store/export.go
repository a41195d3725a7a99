package store

import (
	"context"
	"fmt"

	"github.com/rcliao/lesson-studio/internal/model"
)

// Snapshot is every content table in one document.
type Snapshot struct {
	Categories  []model.Category      `json:"categories"`
	Vocabulary  []model.Vocabulary    `json:"vocabulary"`
	Units       []model.Unit          `json:"units"`
	Lessons     []model.Lesson        `json:"lessons"`
	Versions    []model.LessonVersion `json:"versions"`
	Checkpoints []model.Checkpoint    `json:"checkpoints"`
}

// ExportAll returns the full content of the store, inactive categories included.
func (s *SQLStore) ExportAll(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Categories, err = s.listCategories(ctx, false); err != nil {
		return nil, fmt.Errorf("export categories: %w", err)
	}
	if snap.Vocabulary, err = s.ListVocabulary(ctx); err != nil {
		return nil, fmt.Errorf("export vocabulary: %w", err)
	}
	if snap.Units, err = s.ListUnits(ctx); err != nil {
		return nil, fmt.Errorf("export units: %w", err)
	}
	if snap.Lessons, err = s.ListLessons(ctx); err != nil {
		return nil, fmt.Errorf("export lessons: %w", err)
	}
	if snap.Versions, err = s.ListVersions(ctx); err != nil {
		return nil, fmt.Errorf("export versions: %w", err)
	}
	if snap.Checkpoints, err = s.ListCheckpoints(ctx); err != nil {
		return nil, fmt.Errorf("export checkpoints: %w", err)
	}
	return &snap, nil
}

// Import loads a snapshot keeping its ids. Rows whose id already exists are
// skipped. Returns the number of rows inserted.
func (s *SQLStore) Import(ctx context.Context, snap *Snapshot) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	insert := func(query string, args ...interface{}) error {
		res, err := s.exec(ctx, tx, query+` ON CONFLICT (id) DO NOTHING`, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		imported += int(n)
		return nil
	}

	for _, c := range snap.Categories {
		if err := insert(`INSERT INTO categories (id, name, color_code, sort_order, is_active) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.ColorCode, c.SortOrder, c.IsActive); err != nil {
			return 0, fmt.Errorf("import category %s: %w", c.ID, err)
		}
	}
	for _, v := range snap.Vocabulary {
		if err := insert(`INSERT INTO vocabulary (id, word, meaning, category_id) VALUES (?, ?, ?, ?)`,
			v.ID, v.Word, v.Meaning, v.CategoryID); err != nil {
			return 0, fmt.Errorf("import vocabulary %s: %w", v.ID, err)
		}
	}
	for _, u := range snap.Units {
		if err := insert(`INSERT INTO units (`+unitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Title, u.Description, u.Order, u.CategoryID, u.IsPublished, formatTime(u.CreatedAt)); err != nil {
			return 0, fmt.Errorf("import unit %s: %w", u.ID, err)
		}
	}
	for _, l := range snap.Lessons {
		var current interface{}
		if l.CurrentVersionID != "" {
			current = l.CurrentVersionID
		}
		if err := insert(`INSERT INTO lessons (`+lessonColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.UnitID, l.Title, l.Description, l.Order, current, formatTime(l.CreatedAt)); err != nil {
			return 0, fmt.Errorf("import lesson %s: %w", l.ID, err)
		}
	}
	for _, v := range snap.Versions {
		vocab, err := jsonList(model.UniqueIDs(v.VocabIDs))
		if err != nil {
			return 0, err
		}
		status := v.Status
		if status == "" {
			status = model.StatusDraft
		}
		if err := insert(`INSERT INTO lesson_versions (`+versionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, v.LessonID, v.VersionNumber, string(status), v.VideoURL, v.DurationSec,
			int(v.Difficulty), vocab, formatTime(v.CreatedAt)); err != nil {
			return 0, fmt.Errorf("import version %s: %w", v.ID, err)
		}
	}
	for i, cp := range snap.Checkpoints {
		typ, vocabID, body, err := model.EncodeContent(cp.Content)
		if err != nil {
			return 0, fmt.Errorf("import checkpoint %s: %w", cp.ID, err)
		}
		if err := insert(`INSERT INTO checkpoints (id, lesson_version_id, time_sec, position, type, vocab_id, content) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			cp.ID, cp.LessonVersionID, cp.TimeSec, i, string(typ), vocabID, body); err != nil {
			return 0, fmt.Errorf("import checkpoint %s: %w", cp.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}
