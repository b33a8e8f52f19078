package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/dto"
	"github.com/noah-isme/tkt-widget-api/internal/models"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
)

type fakeCourseStore struct {
	rows       map[string][]models.Course
	listErr    error
	replaceErr error
}

func (f *fakeCourseStore) ListByUser(ctx context.Context, userID string) ([]models.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows[userID], nil
}

func (f *fakeCourseStore) ReplaceForUser(ctx context.Context, userID string, courses []models.Course) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	for i := range courses {
		if courses[i].ID == "" {
			courses[i].ID = uuid.NewString()
		}
		courses[i].UserID = userID
	}
	if f.rows == nil {
		f.rows = map[string][]models.Course{}
	}
	f.rows[userID] = courses
	return nil
}

type recordingPublisher struct {
	users []string
	err   error
}

func (r *recordingPublisher) EnqueuePublish(userID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.users = append(r.users, userID)
	return true, nil
}

func TestCourseServiceReplaceAndList(t *testing.T) {
	store := &fakeCourseStore{}
	publisher := &recordingPublisher{}
	svc := NewCourseService(store, publisher, nil, nil, zap.NewNop())

	records, queued, err := svc.Replace(context.Background(), "u1", dto.ReplaceCoursesRequest{Courses: []dto.CourseInput{
		{ID: "math", Name: "Math", DayOfWeek: 3, StartSlot: 2, EndSlot: 3},
		{Name: "Art", DayOfWeek: 3, StartSlot: 1, EndSlot: 1},
	}})
	require.NoError(t, err)
	assert.True(t, queued)
	assert.Equal(t, []string{"u1"}, publisher.users)
	require.Len(t, records, 2)
	assert.Equal(t, "math", records[0].ID)
	assert.NotEmpty(t, records[1].ID)

	listed, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, records, listed)
}

func TestCourseServiceReplaceValidation(t *testing.T) {
	svc := NewCourseService(&fakeCourseStore{}, nil, nil, nil, nil)
	cases := map[string]dto.CourseInput{
		"missing name":   {DayOfWeek: 1, StartSlot: 1, EndSlot: 1},
		"day too large":  {Name: "X", DayOfWeek: 8, StartSlot: 1, EndSlot: 1},
		"slot too large": {Name: "X", DayOfWeek: 1, StartSlot: 15, EndSlot: 15},
		"end before":     {Name: "X", DayOfWeek: 1, StartSlot: 3, EndSlot: 2},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Replace(context.Background(), "u1", dto.ReplaceCoursesRequest{Courses: []dto.CourseInput{input}})
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}

	_, _, err := svc.Replace(context.Background(), "u1", dto.ReplaceCoursesRequest{Courses: []dto.CourseInput{
		{ID: "x", Name: "A", DayOfWeek: 1, StartSlot: 1, EndSlot: 1},
		{ID: "x", Name: "B", DayOfWeek: 2, StartSlot: 1, EndSlot: 1},
	}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCourseServiceReplaceEmptyClearsTimetable(t *testing.T) {
	store := &fakeCourseStore{rows: map[string][]models.Course{"u1": {{ID: "old", Name: "Old", DayOfWeek: 1, StartSlot: 1, EndSlot: 1}}}}
	svc := NewCourseService(store, nil, nil, nil, nil)

	records, queued, err := svc.Replace(context.Background(), "u1", dto.ReplaceCoursesRequest{})
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Empty(t, records)
	assert.Empty(t, store.rows["u1"])
}

func TestCourseServiceErrors(t *testing.T) {
	svc := NewCourseService(&fakeCourseStore{listErr: errors.New("db"), replaceErr: errors.New("db")}, &recordingPublisher{err: errors.New("stopped")}, nil, nil, nil)

	_, err := svc.List(context.Background(), "u1")
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	_, err = svc.List(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, _, err = svc.Replace(context.Background(), "u1", dto.ReplaceCoursesRequest{Courses: []dto.CourseInput{{Name: "A", DayOfWeek: 1, StartSlot: 1, EndSlot: 1}}})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestCourseServicePublishFailureIsNotFatal(t *testing.T) {
	svc := NewCourseService(&fakeCourseStore{}, &recordingPublisher{err: errors.New("stopped")}, nil, nil, nil)

	_, queued, err := svc.Replace(context.Background(), "u1", dto.ReplaceCoursesRequest{Courses: []dto.CourseInput{{Name: "A", DayOfWeek: 1, StartSlot: 1, EndSlot: 1}}})
	require.NoError(t, err)
	assert.False(t, queued)
}
