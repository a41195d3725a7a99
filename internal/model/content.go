// Package model defines the lesson content entities edited by the studio.
package model

import (
	"time"

	"github.com/samber/lo"
)

// Unit groups lessons under a category.
type Unit struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	CategoryID  string    `json:"category_id,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lesson is a titled item within a unit. CurrentVersionID points at the
// only version the studio edits.
type Lesson struct {
	ID               string    `json:"id"`
	UnitID           string    `json:"unit_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Order            int       `json:"order"`
	CurrentVersionID string    `json:"current_version_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// LessonVersion is one revision of a lesson's playable content.
type LessonVersion struct {
	ID            string        `json:"id"`
	LessonID      string        `json:"lesson_id"`
	VersionNumber int           `json:"version_number"`
	Status        VersionStatus `json:"status"`
	VideoURL      string        `json:"video_url,omitempty"`
	DurationSec   int           `json:"duration_sec"`
	Difficulty    Difficulty    `json:"difficulty"`
	VocabIDs      []string      `json:"vocab_ids,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Clone returns a copy that shares no slices with v.
func (v LessonVersion) Clone() LessonVersion {
	out := v
	if v.VocabIDs != nil {
		out.VocabIDs = append([]string(nil), v.VocabIDs...)
	}
	return out
}

// VersionStatus is the publication state of a lesson version.
type VersionStatus string

const (
	StatusDraft     VersionStatus = "draft"
	StatusPublished VersionStatus = "published"
	StatusArchived  VersionStatus = "archived"
)

// ValidStatuses are the allowed version statuses.
var ValidStatuses = map[VersionStatus]bool{
	StatusDraft:     true,
	StatusPublished: true,
	StatusArchived:  true,
}

// Category is used for unit grouping and display only.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ColorCode string `json:"color_code,omitempty"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

// Vocabulary is a word a lesson can target or a checkpoint can reference.
type Vocabulary struct {
	ID         string `json:"id"`
	Word       string `json:"word"`
	Meaning    string `json:"meaning,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
}

// UniqueIDs drops empty and repeated ids, keeping first occurrences in order.
func UniqueIDs(ids []string) []string {
	out := lo.Uniq(lo.Filter(ids, func(id string, _ int) bool { return id != "" }))
	if out == nil {
		out = []string{}
	}
	return out
}
