package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/lesson-studio/internal/model"
)

const unitColumns = `id, title, description, sort_order, category_id, is_published, created_at`

// ListUnits returns all units ordered by display order.
func (s *SQLStore) ListUnits(ctx context.Context) ([]model.Unit, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+unitColumns+` FROM units ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// CreateUnit stores a unit with the next free order of its category.
func (s *SQLStore) CreateUnit(ctx context.Context, p UnitParams) (*model.Unit, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("unit title is required")
	}
	published := true
	if p.IsPublished != nil {
		published = *p.IsPublished
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var order int
	err = s.queryRow(ctx, tx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM units WHERE category_id = ?`, p.CategoryID).Scan(&order)
	if err != nil {
		return nil, fmt.Errorf("next unit order: %w", err)
	}

	u := &model.Unit{
		ID:          s.newID(),
		Title:       p.Title,
		Description: p.Description,
		Order:       order,
		CategoryID:  p.CategoryID,
		IsPublished: published,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.exec(ctx, tx,
		`INSERT INTO units (`+unitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Title, u.Description, u.Order, u.CategoryID, u.IsPublished, formatTime(u.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert unit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUnit applies the non-nil fields of p. Moving a unit to another
// category puts it last there.
func (s *SQLStore) UpdateUnit(ctx context.Context, id string, p UnitPatch) error {
	var set patchSet
	if p.Title != nil {
		set.add("title", *p.Title)
	}
	if p.Description != nil {
		set.add("description", *p.Description)
	}
	if p.IsPublished != nil {
		set.add("is_published", *p.IsPublished)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if p.CategoryID != nil {
		var current string
		err := s.queryRow(ctx, tx, `SELECT category_id FROM units WHERE id = ?`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("units %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if current != *p.CategoryID {
			var order int
			err = s.queryRow(ctx, tx,
				`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM units WHERE category_id = ?`, *p.CategoryID).Scan(&order)
			if err != nil {
				return fmt.Errorf("next unit order: %w", err)
			}
			set.add("category_id", *p.CategoryID)
			set.add("sort_order", order)
		}
	}
	if err := s.applyPatch(ctx, tx, "units", id, set); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteUnit removes the unit; lessons, versions and checkpoints follow by cascade.
func (s *SQLStore) DeleteUnit(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM units WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return expectRow(res, "unit", id)
}

func scanUnit(row scanner) (model.Unit, error) {
	var u model.Unit
	var createdAt string
	err := row.Scan(&u.ID, &u.Title, &u.Description, &u.Order, &u.CategoryID, &u.IsPublished, &createdAt)
	if err != nil {
		return u, err
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}
