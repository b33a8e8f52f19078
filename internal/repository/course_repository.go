package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tkt-widget-api/internal/models"
)

// CourseRepository persists the host app's courses per user.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository builds repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByUser returns a user's courses ordered by day, start slot and insertion position.
func (r *CourseRepository) ListByUser(ctx context.Context, userID string) ([]models.Course, error) {
	const query = `SELECT id, user_id, name, teacher, classroom, day_of_week, start_slot, end_slot, note, position, updated_at
FROM courses WHERE user_id = $1 ORDER BY day_of_week ASC, start_slot ASC, position ASC`
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ReplaceForUser swaps the user's whole course list inside one transaction.
func (r *CourseRepository) ReplaceForUser(ctx context.Context, userID string, courses []models.Course) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace courses: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM courses WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear courses: %w", err)
	}

	const insert = `
INSERT INTO courses (id, user_id, name, teacher, classroom, day_of_week, start_slot, end_slot, note, position, updated_at)
VALUES (:id, :user_id, :name, :teacher, :classroom, :day_of_week, :start_slot, :end_slot, :note, :position, :updated_at)`

	now := time.Now().UTC()
	for i := range courses {
		course := &courses[i]
		if course.ID == "" {
			course.ID = uuid.NewString()
		}
		course.UserID = userID
		course.Position = i
		course.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insert, course); err != nil {
			return fmt.Errorf("insert course %s: %w", course.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace courses: %w", err)
	}
	return nil
}

// Ping checks database connectivity for readiness probes.
func (r *CourseRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
