package models

import "time"

// CatalogEntry is the read-only view of a published course handed to the
// recommendation assistant.
type CatalogEntry struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Level       string `json:"level" yaml:"level"`
	Category    string `json:"category" yaml:"category"`
	Duration    string `json:"duration,omitempty" yaml:"duration"`
}

// Course levels accepted by the catalog.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Course is a catalog row.
type Course struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title" validate:"required,min=3"`
	Description string    `json:"description" yaml:"description" validate:"required,min=10"`
	Level       string    `json:"level" yaml:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Category    string    `json:"category" yaml:"category"`
	Duration    string    `json:"duration,omitempty" yaml:"duration"`
	Published   bool      `json:"isPublished" yaml:"published"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
}

// Entry returns the catalog view of the course.
func (c Course) Entry() CatalogEntry {
	return CatalogEntry{
		Title:       c.Title,
		Description: c.Description,
		Level:       c.Level,
		Category:    c.Category,
		Duration:    c.Duration,
	}
}

// CourseFilter narrows a published course listing.
type CourseFilter struct {
	Category string
	Level    string
	Search   string // case-insensitive match on title or description
}
