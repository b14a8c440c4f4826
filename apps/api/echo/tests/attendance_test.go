package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/campusflow/core/attendance"
	"github.com/campusflow/campusflow/core/user"
	testutil "github.com/campusflow/campusflow/tests"
)

func Test_attendanceApi(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	sch := testutil.CreateSchool(t, schoolRepo, "Green Valley", "2025-2026")
	teacher := testutil.CreateUser(t, usrRepo, "Teach", "teach@gv.test", "LePass123", user.RoleTeacher, sch.ID, true)
	student := testutil.CreateStudent(t, usrRepo, "Student", "s1001", "LePass123", sch.ID, "Class 5")
	other := testutil.CreateStudent(t, usrRepo, "Other", "s1002", "LePass123", sch.ID, "Class 5")
	teacherToken := getToken(t, teacher)

	record := func(month, year, present, total int) []byte {
		return marchallObj(t, attendance.NewRecord{
			StudentID:        student.ID,
			SchoolID:         sch.ID,
			ClassName:        "Class 5",
			Month:            month,
			Year:             year,
			DaysPresent:      present,
			TotalWorkingDays: total,
		})
	}

	t.Run("students cannot record", func(t *testing.T) {
		do(t, httpTest{
			name: "student forbidden", method: http.MethodPost, path: "/api/attendance",
			token: getToken(t, student), wantCode: http.StatusForbidden, wantData: errForbiddenBody,
		})
	})

	t.Run("cannot record for another school's student", func(t *testing.T) {
		schB := testutil.CreateSchool(t, schoolRepo, "Blue Hills", "2025-2026")
		outsider := testutil.CreateStudent(t, usrRepo, "Outsider", "b1001", "", schB.ID, "Class 5")
		body := marchallObj(t, attendance.NewRecord{
			StudentID:        outsider.ID,
			ClassName:        "Class 5",
			Month:            5,
			Year:             2025,
			DaysPresent:      10,
			TotalWorkingDays: 20,
		})
		do(t, httpTest{
			name: "foreign student", method: http.MethodPost, path: "/api/attendance", token: teacherToken,
			body: body, wantCode: http.StatusNotFound, wantData: errNotFoundBody,
		})
	})

	t.Run("present days cannot exceed working days", func(t *testing.T) {
		do(t, httpTest{
			name: "bad counts", method: http.MethodPost, path: "/api/attendance", token: teacherToken,
			body: record(5, 2025, 25, 20), wantCode: http.StatusBadRequest,
		})
	})

	t.Run("re-recording a month replaces the earlier entry", func(t *testing.T) {
		rec := do(t, httpTest{
			name: "first entry", method: http.MethodPost, path: "/api/attendance", token: teacherToken,
			body: record(5, 2025, 18, 22),
		})
		var first attendance.MonthlyRecord
		decodeData(t, rec, &first)
		require.NotEmpty(t, first.ID)

		rec = do(t, httpTest{
			name: "corrected entry", method: http.MethodPost, path: "/api/attendance", token: teacherToken,
			body: record(5, 2025, 20, 22),
		})
		var second attendance.MonthlyRecord
		decodeData(t, rec, &second)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 20, second.DaysPresent)
	})

	// July 2025
	do(t, httpTest{
		name: "second month", method: http.MethodPost, path: "/api/attendance", token: teacherToken,
		body: record(6, 2025, 15, 20),
	})
	// out-of-year month, must not leak into the 2025-2026 summary
	do(t, httpTest{
		name: "other year month", method: http.MethodPost, path: "/api/attendance", token: teacherToken,
		body: record(5, 2024, 1, 20),
	})

	yearQuery := url.Values{"student_id": {student.ID}, "academic_year": {"2025-2026"}}.Encode()

	t.Run("student records follow the academic calendar", func(t *testing.T) {
		rec := do(t, httpTest{name: "records", path: "/api/attendance?" + yearQuery, token: teacherToken})
		var records []attendance.MonthlyRecord
		decodeData(t, rec, &records)
		require.Len(t, records, 2)
		assert.Equal(t, 5, records[0].Month)
		assert.Equal(t, 6, records[1].Month)
	})

	t.Run("summary", func(t *testing.T) {
		rec := do(t, httpTest{name: "summary", path: "/api/attendance/summary?" + yearQuery, token: teacherToken})
		var data attendance.Summary
		decodeData(t, rec, &data)
		assert.Equal(t, attendance.Summary{
			TotalWorkingDays: 42,
			DaysPresent:      35,
			DaysAbsent:       7,
			DaysLate:         0,
			Percentage:       83,
		}, data)
	})

	t.Run("student reads own summary only", func(t *testing.T) {
		rec := do(t, httpTest{
			name:  "self summary",
			path:  "/api/attendance/summary?" + url.Values{"academic_year": {"2025-2026"}}.Encode(),
			token: getToken(t, student),
		})
		var data attendance.Summary
		decodeData(t, rec, &data)
		assert.Equal(t, 35, data.DaysPresent)

		do(t, httpTest{
			name: "peeking", path: "/api/attendance/summary?" + yearQuery, token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: errNotFoundBody,
		})
	})

	t.Run("months", func(t *testing.T) {
		rec := do(t, httpTest{
			name:  "months",
			path:  "/api/attendance/months?" + url.Values{"academic_year": {"2025-2026"}}.Encode(),
			token: teacherToken,
		})
		var slots []struct {
			Month int    `json:"month"`
			Year  int    `json:"year"`
			Label string `json:"label"`
		}
		decodeData(t, rec, &slots)
		require.Len(t, slots, 12)
		assert.Equal(t, 5, slots[0].Month)
		assert.Equal(t, 2025, slots[0].Year)
		assert.Equal(t, "June 2025", slots[0].Label)
		assert.Equal(t, 4, slots[11].Month)
		assert.Equal(t, 2026, slots[11].Year)

		do(t, httpTest{
			name: "bad label", token: teacherToken,
			path:     "/api/attendance/months?" + url.Values{"academic_year": {"always"}}.Encode(),
			wantCode: http.StatusBadRequest,
		})
	})
}
