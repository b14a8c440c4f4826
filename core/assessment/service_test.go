package assessment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/campusflow/core/assessment"
	"github.com/campusflow/campusflow/storage/inmem"
)

func setup(t *testing.T) (assessment.Service, assessment.Repository) {
	t.Helper()

	db, err := inmem.Open()
	require.NoError(t, err)
	repo := inmem.NewAssessmentRepository(db)
	return assessment.NewService(repo), repo
}

func Test_service_Resolve(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	key := assessment.SchemeKey{
		SchoolID:     "60c72b2f9b1e8a5f4c8b4567",
		ClassName:    "Class 5",
		AcademicYear: "2025-2026",
	}

	t.Run("first read creates the default structure", func(t *testing.T) {
		s, err := svc.Resolve(ctx, key)
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, assessment.DefaultGroups(), s.Groups)

		again, err := svc.Resolve(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, s.ID, again.ID)
	})

	t.Run("loser of a create race adopts the winner", func(t *testing.T) {
		other := key
		other.ClassName = "Class 6"

		// a concurrent request already inserted under this key
		now := time.Now().UTC()
		winner, err := repo.CreateScheme(ctx, assessment.Scheme{
			SchoolID:     other.SchoolID,
			ClassName:    other.ClassName,
			AcademicYear: other.AcademicYear,
			Groups:       []assessment.Group{{Name: "FA1", Tests: []assessment.Test{{Name: "Quiz", MaxMarks: 25}}}},
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.NoError(t, err)

		s, err := svc.Resolve(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, winner.ID, s.ID)
		assert.Equal(t, winner.Groups, s.Groups)
	})

	t.Run("keys resolve independently", func(t *testing.T) {
		other := key
		other.AcademicYear = "2026-2027"
		s, err := svc.Resolve(ctx, other)
		require.NoError(t, err)

		first, err := svc.Resolve(ctx, key)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, s.ID)
	})
}

func Test_service_SaveMarks(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	sm := assessment.SaveMarks{
		StudentID:    "60c72b2f9b1e8a5f4c8b1111",
		SchoolID:     "60c72b2f9b1e8a5f4c8b4567",
		ClassName:    "Class 5",
		AcademicYear: "2025-2026",
		Group:        "FA1",
		Scores:       map[string]float64{"Tool 1": 8, "Tool 4": 17},
	}

	saved, err := svc.SaveMarks(ctx, sm, "teacher-1")
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "teacher-1", saved.EnteredBy)

	t.Run("re-save replaces the document", func(t *testing.T) {
		sm.Scores = map[string]float64{"Tool 1": 9}
		again, err := svc.SaveMarks(ctx, sm, "teacher-2")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, again.ID)
		assert.Equal(t, map[string]float64{"Tool 1": 9}, again.Scores)
		assert.Equal(t, "teacher-2", again.EnteredBy)
	})

	t.Run("unknown group is rejected", func(t *testing.T) {
		bad := sm
		bad.Group = "FA9"
		_, err := svc.SaveMarks(ctx, bad, "teacher-1")
		assert.Error(t, err)
	})

	t.Run("score above the test maximum is rejected", func(t *testing.T) {
		bad := sm
		bad.Scores = map[string]float64{"Tool 1": 11}
		_, err := svc.SaveMarks(ctx, bad, "teacher-1")
		assert.Error(t, err)
	})

	t.Run("unknown test is rejected", func(t *testing.T) {
		bad := sm
		bad.Scores = map[string]float64{"Tool 9": 1}
		_, err := svc.SaveMarks(ctx, bad, "teacher-1")
		assert.Error(t, err)
	})

	t.Run("student marks are grouped and ordered", func(t *testing.T) {
		sa := sm
		sa.Group = "SA1"
		sa.Scores = map[string]float64{"AS1": 12}
		_, err := svc.SaveMarks(ctx, sa, "teacher-1")
		require.NoError(t, err)

		marks, err := svc.StudentMarks(ctx, sm.StudentID, sm.AcademicYear)
		require.NoError(t, err)
		require.Len(t, marks, 2)
		assert.Equal(t, "FA1", marks[0].Group)
		assert.Equal(t, "SA1", marks[1].Group)
	})
}
