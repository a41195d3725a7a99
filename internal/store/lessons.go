package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/lesson-studio/internal/model"
)

const (
	lessonColumns  = `id, unit_id, title, description, sort_order, current_version_id, created_at`
	versionColumns = `id, lesson_id, version_number, status, video_url, duration_sec, difficulty, vocab_ids, created_at`
)

// ListLessons returns all lessons ordered by display order.
func (s *SQLStore) ListLessons(ctx context.Context) ([]model.Lesson, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+lessonColumns+` FROM lessons ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []model.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// CreateLesson inserts the lesson, its version 1 draft and the current
// version pointer in one transaction.
func (s *SQLStore) CreateLesson(ctx context.Context, unitID string, p LessonParams) (*model.Lesson, *model.LessonVersion, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, nil, fmt.Errorf("lesson title is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var exists string
	err = s.queryRow(ctx, tx, `SELECT id FROM units WHERE id = ?`, unitID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	var order int
	err = s.queryRow(ctx, tx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM lessons WHERE unit_id = ?`, unitID).Scan(&order)
	if err != nil {
		return nil, nil, fmt.Errorf("next lesson order: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	lesson := &model.Lesson{
		ID:          s.newID(),
		UnitID:      unitID,
		Title:       p.Title,
		Description: p.Description,
		Order:       order,
		CreatedAt:   now,
	}
	_, err = s.exec(ctx, tx,
		`INSERT INTO lessons (`+lessonColumns+`) VALUES (?, ?, ?, ?, ?, NULL, ?)`,
		lesson.ID, lesson.UnitID, lesson.Title, lesson.Description, lesson.Order, formatTime(now))
	if err != nil {
		return nil, nil, fmt.Errorf("insert lesson: %w", err)
	}

	version := &model.LessonVersion{
		ID:            s.newID(),
		LessonID:      lesson.ID,
		VersionNumber: 1,
		Status:        model.StatusDraft,
		Difficulty:    model.DifficultyIntermediate,
		VocabIDs:      []string{},
		CreatedAt:     now,
	}
	_, err = s.exec(ctx, tx,
		`INSERT INTO lesson_versions (`+versionColumns+`) VALUES (?, ?, ?, ?, '', 0, ?, '[]', ?)`,
		version.ID, version.LessonID, version.VersionNumber, string(version.Status), int(version.Difficulty), formatTime(now))
	if err != nil {
		return nil, nil, fmt.Errorf("insert lesson version: %w", err)
	}

	_, err = s.exec(ctx, tx, `UPDATE lessons SET current_version_id = ? WHERE id = ?`, version.ID, lesson.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("set current version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	lesson.CurrentVersionID = version.ID
	return lesson, version, nil
}

// UpdateLesson applies the non-nil fields of p.
func (s *SQLStore) UpdateLesson(ctx context.Context, id string, p LessonPatch) error {
	var set patchSet
	if p.Title != nil {
		set.add("title", *p.Title)
	}
	if p.Description != nil {
		set.add("description", *p.Description)
	}
	if p.Order != nil {
		set.add("sort_order", *p.Order)
	}
	return s.applyPatch(ctx, s.db, "lessons", id, set)
}

// DeleteLesson removes the lesson; versions and checkpoints follow by cascade.
func (s *SQLStore) DeleteLesson(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return expectRow(res, "lesson", id)
}

// ListVersions returns every lesson version, grouped by lesson.
func (s *SQLStore) ListVersions(ctx context.Context) ([]model.LessonVersion, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+versionColumns+` FROM lesson_versions ORDER BY lesson_id, version_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []model.LessonVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// UpdateLessonVersion applies the non-nil fields of p. Vocabulary ids are
// de-duplicated keeping the first occurrence.
func (s *SQLStore) UpdateLessonVersion(ctx context.Context, id string, p VersionPatch) error {
	var set patchSet
	if p.VideoURL != nil {
		set.add("video_url", *p.VideoURL)
	}
	if p.Difficulty != nil {
		if !p.Difficulty.Valid() {
			return fmt.Errorf("invalid difficulty %d (valid: 1-4)", *p.Difficulty)
		}
		set.add("difficulty", int(*p.Difficulty))
	}
	if p.DurationSec != nil {
		if *p.DurationSec < 0 {
			return fmt.Errorf("negative duration %d", *p.DurationSec)
		}
		set.add("duration_sec", *p.DurationSec)
	}
	if p.Status != nil {
		if !model.ValidStatuses[*p.Status] {
			return fmt.Errorf("invalid status %q (valid: draft, published, archived)", *p.Status)
		}
		set.add("status", string(*p.Status))
	}
	if p.VocabIDs != nil {
		vocab, err := jsonList(model.UniqueIDs(*p.VocabIDs))
		if err != nil {
			return err
		}
		set.add("vocab_ids", vocab)
	}
	return s.applyPatch(ctx, s.db, "lesson_versions", id, set)
}

func jsonList(ids []string) (string, error) {
	b, err := json.Marshal(ids)
	return string(b), err
}

func scanLesson(row scanner) (model.Lesson, error) {
	var l model.Lesson
	var current sql.NullString
	var createdAt string
	err := row.Scan(&l.ID, &l.UnitID, &l.Title, &l.Description, &l.Order, &current, &createdAt)
	if err != nil {
		return l, err
	}
	if current.Valid {
		l.CurrentVersionID = current.String
	}
	l.CreatedAt = parseTime(createdAt)
	return l, nil
}

func scanVersion(row scanner) (model.LessonVersion, error) {
	var v model.LessonVersion
	var status, vocabJSON, createdAt string
	var difficulty int
	err := row.Scan(&v.ID, &v.LessonID, &v.VersionNumber, &status, &v.VideoURL,
		&v.DurationSec, &difficulty, &vocabJSON, &createdAt)
	if err != nil {
		return v, err
	}
	v.Status = model.VersionStatus(status)
	v.Difficulty = model.Difficulty(difficulty)
	v.CreatedAt = parseTime(createdAt)
	if err := json.Unmarshal([]byte(vocabJSON), &v.VocabIDs); err != nil {
		return v, fmt.Errorf("decode vocab_ids of version %s: %w", v.ID, err)
	}
	if v.VocabIDs == nil {
		v.VocabIDs = []string{}
	}
	return v, nil
}
