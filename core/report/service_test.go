package report_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/campusflow/core/report"
	"github.com/campusflow/campusflow/storage/inmem"
)

func Test_service_Upsert(t *testing.T) {
	db, err := inmem.Open()
	require.NoError(t, err)
	svc := report.NewService(inmem.NewReportRepository(db))
	ctx := context.Background()

	key := report.Key{
		StudentID:    "60c72b2f9b1e8a5f4c8b1111",
		SchoolID:     "60c72b2f9b1e8a5f4c8b4567",
		AcademicYear: "2025-2026",
		TemplateKey:  "cbse-term",
		Term:         "Term 1",
	}
	card := report.UpsertReportCard{
		Key:        key,
		ClassName:  "Class 5",
		Formative:  []report.GroupResult{{Group: "FA1", Scores: map[string]float64{"Tool 1": 8}}},
		Attendance: report.TermAttendance{WorkingDays: 110, PresentDays: 99},
		FinalGrade: "A",
	}

	first, err := svc.Upsert(ctx, card)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	t.Run("same key lands on the same document", func(t *testing.T) {
		card.FinalGrade = "A+"
		second, err := svc.Upsert(ctx, card)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.Equal(t, "A+", second.FinalGrade)
	})

	t.Run("a different term is a different document", func(t *testing.T) {
		card.Key.Term = "Term 2"
		second, err := svc.Upsert(ctx, card)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("get by key", func(t *testing.T) {
		rc, err := svc.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, first.ID, rc.ID)

		missing := key
		missing.AcademicYear = "2024-2025"
		_, err = svc.Get(ctx, missing)
		assert.Equal(t, report.ErrNotFound, err)
	})

	t.Run("student cards for one year", func(t *testing.T) {
		cards, err := svc.QueryStudent(ctx, key.StudentID, key.AcademicYear)
		require.NoError(t, err)
		assert.Len(t, cards, 2)
	})
}
