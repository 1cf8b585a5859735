// Package catalog stores the course catalog in SQLite and serves the
// published subset to the recommendation assistant.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/coursewise/coursewise/pkg/models"
)

// ErrInvalidCourse is returned by Import when a course fails validation.
var ErrInvalidCourse = errors.New("invalid course")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store is a SQLite-backed course catalog.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const createCoursesTable = `
CREATE TABLE IF NOT EXISTS courses (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	level TEXT NOT NULL DEFAULT 'Beginner',
	category TEXT NOT NULL DEFAULT '',
	duration TEXT NOT NULL DEFAULT '',
	published INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_courses_published ON courses(published, created_at);
`

// New opens the catalog database at dbPath and runs auto-migration.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	if _, err := db.Exec(createCoursesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// ListPublished returns every published course in insertion order.
func (s *Store) ListPublished(ctx context.Context) ([]models.CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, description, level, category, duration
		 FROM courses WHERE published = 1 ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list published: %w", err)
	}
	defer rows.Close()

	var entries []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		if err := rows.Scan(&e.Title, &e.Description, &e.Level, &e.Category, &e.Duration); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// List returns published courses matching f, newest first.
func (s *Store) List(ctx context.Context, f models.CourseFilter) ([]models.Course, error) {
	query := `SELECT id, title, description, level, category, duration, published, created_at
		FROM courses WHERE published = 1`
	var args []any
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Level != "" {
		query += ` AND level = ?`
		args = append(args, f.Level)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query += ` AND (lower(title) LIKE ? OR lower(description) LIKE ?)`
		args = append(args, like, like)
	}
	query += ` ORDER BY created_at DESC, seq DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Level, &c.Category, &c.Duration, &c.Published, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Count returns the number of courses, published or not.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

// Import validates and upserts courses in one transaction. Courses without
// an ID get a fresh UUID; an existing ID is updated in place and keeps its
// position in the catalog. It returns the number of courses written.
func (s *Store) Import(ctx context.Context, courses []models.Course) (int, error) {
	for i := range courses {
		if courses[i].Level == "" {
			courses[i].Level = models.LevelBeginner
		}
		if err := validate.Struct(courses[i]); err != nil {
			return 0, fmt.Errorf("%w: course %d (%q): %v", ErrInvalidCourse, i, courses[i].Title, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, c := range courses {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.now()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO courses (id, title, description, level, category, duration, published, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				level = excluded.level,
				category = excluded.category,
				duration = excluded.duration,
				published = excluded.published`,
			c.ID, c.Title, c.Description, c.Level, c.Category, c.Duration, c.Published, c.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("import course %q: %w", c.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(courses), nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// File is the YAML layout accepted by LoadFile.
type File struct {
	Courses []models.Course `yaml:"courses"`
}

// LoadFile reads courses from a YAML file. Environment variables in the file
// are expanded.
func LoadFile(path string) ([]models.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return f.Courses, nil
}
