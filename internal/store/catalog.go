package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/lesson-studio/internal/model"
)

// ListCategories returns active categories in display order.
func (s *SQLStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.listCategories(ctx, true)
}

func (s *SQLStore) listCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := `SELECT id, name, color_code, sort_order, is_active FROM categories`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := s.query(ctx, s.db, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ColorCode, &c.SortOrder, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory stores a new active category.
func (s *SQLStore) CreateCategory(ctx context.Context, p CategoryParams) (*model.Category, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("category name is required")
	}
	c := &model.Category{
		ID:        s.newID(),
		Name:      p.Name,
		ColorCode: p.ColorCode,
		SortOrder: p.SortOrder,
		IsActive:  true,
	}
	_, err := s.exec(ctx, s.db,
		`INSERT INTO categories (id, name, color_code, sort_order, is_active) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.ColorCode, c.SortOrder, c.IsActive)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// ListVocabulary returns every vocabulary record ordered by word.
func (s *SQLStore) ListVocabulary(ctx context.Context) ([]model.Vocabulary, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT id, word, meaning, category_id FROM vocabulary ORDER BY word, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Vocabulary
	for rows.Next() {
		var v model.Vocabulary
		if err := rows.Scan(&v.ID, &v.Word, &v.Meaning, &v.CategoryID); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PutVocabulary inserts or overwrites a vocabulary record. An empty ID gets
// a new one.
func (s *SQLStore) PutVocabulary(ctx context.Context, v model.Vocabulary) (*model.Vocabulary, error) {
	if strings.TrimSpace(v.Word) == "" {
		return nil, fmt.Errorf("vocabulary word is required")
	}
	if v.ID == "" {
		v.ID = s.newID()
	}
	_, err := s.exec(ctx, s.db,
		`INSERT INTO vocabulary (id, word, meaning, category_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET word = excluded.word, meaning = excluded.meaning, category_id = excluded.category_id`,
		v.ID, v.Word, v.Meaning, v.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("put vocabulary: %w", err)
	}
	return &v, nil
}
