// Package store provides the content repository interface and its SQL implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/lesson-studio/internal/model"
)

// ErrNotFound is returned when an update or delete targets a missing row.
var ErrNotFound = errors.New("not found")

// UnitParams holds parameters for creating a unit.
type UnitParams struct {
	Title       string
	Description string
	CategoryID  string
	IsPublished *bool // nil means published
}

// UnitPatch holds the unit fields to change. Nil fields are left alone.
type UnitPatch struct {
	Title       *string
	Description *string
	CategoryID  *string
	IsPublished *bool
}

// LessonParams holds parameters for creating a lesson.
type LessonParams struct {
	Title       string
	Description string
}

// LessonPatch holds the lesson fields to change.
type LessonPatch struct {
	Title       *string
	Description *string
	Order       *int
}

// VersionPatch holds the lesson version fields to change.
type VersionPatch struct {
	VideoURL    *string
	Difficulty  *model.Difficulty
	DurationSec *int
	Status      *model.VersionStatus
	VocabIDs    *[]string
}

// CategoryParams holds parameters for creating a category.
type CategoryParams struct {
	Name      string
	ColorCode string
	SortOrder int
}

// Store is the durable owner of units, lessons, versions and checkpoints.
// It carries no business rules beyond the cascade on delete.
type Store interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, p CategoryParams) (*model.Category, error)

	ListVocabulary(ctx context.Context) ([]model.Vocabulary, error)
	PutVocabulary(ctx context.Context, v model.Vocabulary) (*model.Vocabulary, error)

	// ListUnits returns units ordered by their display order.
	ListUnits(ctx context.Context) ([]model.Unit, error)
	// CreateUnit appends a unit after the last one in its category.
	CreateUnit(ctx context.Context, p UnitParams) (*model.Unit, error)
	UpdateUnit(ctx context.Context, id string, p UnitPatch) error
	// DeleteUnit removes a unit with its lessons, versions and checkpoints.
	DeleteUnit(ctx context.Context, id string) error

	ListLessons(ctx context.Context) ([]model.Lesson, error)
	// CreateLesson inserts a lesson together with its first draft version.
	// Either both rows exist afterwards or neither does.
	CreateLesson(ctx context.Context, unitID string, p LessonParams) (*model.Lesson, *model.LessonVersion, error)
	UpdateLesson(ctx context.Context, id string, p LessonPatch) error
	DeleteLesson(ctx context.Context, id string) error

	ListVersions(ctx context.Context) ([]model.LessonVersion, error)
	UpdateLessonVersion(ctx context.Context, id string, p VersionPatch) error

	// ListCheckpoints returns all checkpoints ordered by time, ties in
	// the order they were saved.
	ListCheckpoints(ctx context.Context) ([]model.Checkpoint, error)
	// ReplaceCheckpoints deletes every checkpoint of the version and inserts
	// cps as the complete new set. Returns the stored checkpoints.
	ReplaceCheckpoints(ctx context.Context, versionID string, cps []model.Checkpoint) ([]model.Checkpoint, error)

	// Close closes the store.
	Close() error
}
