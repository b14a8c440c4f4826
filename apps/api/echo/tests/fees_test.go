package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/campusflow/core/fees"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/user"
	testutil "github.com/campusflow/campusflow/tests"
)

func Test_feesApi_payments(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	schA := testutil.CreateSchool(t, schoolRepo, "School A", "2025-2026")
	schB := testutil.CreateSchool(t, schoolRepo, "School B", "2025-2026")
	admin := testutil.CreateUser(t, usrRepo, "Admin A", "admin@a.test", "LePass123", user.RoleAdmin, schA.ID, true)
	student := testutil.CreateStudent(t, usrRepo, "Student A", "a1001", "LePass123", schA.ID, "Class 5")
	adminToken := getToken(t, admin)

	paymentDate := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)

	t.Run("students cannot record payments", func(t *testing.T) {
		do(t, httpTest{
			name: "student forbidden", method: http.MethodPost, path: "/api/fees/payments",
			token: getToken(t, student), wantCode: http.StatusForbidden, wantData: errForbiddenBody,
		})
	})

	var recorded fees.Payment
	t.Run("record", func(t *testing.T) {
		body := marchallObj(t, fees.NewPayment{
			StudentID:     student.ID,
			SchoolID:      schA.ID,
			ClassName:     "Class 5",
			AcademicYear:  "2025-2026",
			AmountPaid:    2500,
			PaymentDate:   paymentDate,
			PaymentMethod: fees.MethodCash,
			Purpose:       "Term 1",
		})
		rec := do(t, httpTest{
			name: "record", method: http.MethodPost, path: "/api/fees/payments", token: adminToken,
			body: body, wantCode: http.StatusCreated,
		})
		decodeData(t, rec, &recorded)
		require.NotEmpty(t, recorded.ID)
		assert.NotEmpty(t, recorded.ReceiptNumber)
		assert.Equal(t, admin.ID, recorded.RecordedBy)
	})

	t.Run("cannot record for another school's student", func(t *testing.T) {
		outsider := testutil.CreateStudent(t, usrRepo, "Student B", "b1001", "", schB.ID, "Class 5")
		body := marchallObj(t, fees.NewPayment{
			StudentID:     outsider.ID,
			ClassName:     "Class 5",
			AcademicYear:  "2025-2026",
			AmountPaid:    2500,
			PaymentDate:   paymentDate,
			PaymentMethod: fees.MethodCash,
		})
		do(t, httpTest{
			name: "foreign student", method: http.MethodPost, path: "/api/fees/payments", token: adminToken,
			body: body, wantCode: http.StatusNotFound, wantData: errNotFoundBody,
		})
	})

	t.Run("bad payment method", func(t *testing.T) {
		body := marchallObj(t, fees.NewPayment{
			StudentID:     student.ID,
			SchoolID:      schA.ID,
			ClassName:     "Class 5",
			AcademicYear:  "2025-2026",
			AmountPaid:    100,
			PaymentDate:   paymentDate,
			PaymentMethod: "barter",
		})
		do(t, httpTest{
			name: "bad method", method: http.MethodPost, path: "/api/fees/payments", token: adminToken,
			body: body, wantCode: http.StatusBadRequest,
		})
	})

	t.Run("revise amount, keys stay put", func(t *testing.T) {
		body := marchallObj(t, fees.UpdatePayment{AmountPaid: 3000, PaymentMethod: fees.MethodCard})
		rec := do(t, httpTest{
			name: "revise", method: http.MethodPut, path: "/api/fees/payments/" + recorded.ID,
			token: adminToken, body: body,
		})
		var data fees.Payment
		decodeData(t, rec, &data)
		assert.Equal(t, float64(3000), data.AmountPaid)
		assert.Equal(t, fees.MethodCard, data.PaymentMethod)
		assert.Equal(t, recorded.ReceiptNumber, data.ReceiptNumber)
		assert.Equal(t, recorded.StudentID, data.StudentID)
	})

	t.Run("query is school-scoped", func(t *testing.T) {
		do(t, httpTest{
			name: "cross-tenant query", token: adminToken,
			path:     "/api/fees/payments?" + url.Values{"school_id": {schB.ID}}.Encode(),
			wantCode: http.StatusNotFound, wantData: errNotFoundBody,
		})

		rec := do(t, httpTest{name: "own school query", path: "/api/fees/payments", token: adminToken})
		var data []fees.Payment
		decodeData(t, rec, &data)
		require.Len(t, data, 1)
		assert.Equal(t, recorded.ID, data[0].ID)
	})

	t.Run("unknown payment", func(t *testing.T) {
		do(t, httpTest{
			name: "unknown payment", path: "/api/fees/payments/60c72b2f9b1e8a5f4c8b4567", token: adminToken,
			wantCode: http.StatusNotFound, wantData: failureBody(t, fees.ErrNotFound.Error()),
		})
	})
}

func Test_feesApi_summary(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	tuition := school.ClassTuition{ClassName: "Class 5", Terms: []school.Term{
		{Label: "Term 1", Amount: 4000},
		{Label: "Term 2", Amount: 6000},
	}}
	sch := testutil.CreateSchool(t, schoolRepo, "Green Valley", "2025-2026", tuition)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@gv.test", "LePass123", user.RoleAdmin, sch.ID, true)
	student := testutil.CreateStudent(t, usrRepo, "Student", "s1001", "LePass123", sch.ID, "Class 5")
	other := testutil.CreateStudent(t, usrRepo, "Other", "s1002", "LePass123", sch.ID, "Class 5")

	seedPayment := func(amount float64) {
		_, err := feesRepo.CreatePayment(context.Background(), fees.Payment{
			StudentID:     student.ID,
			SchoolID:      sch.ID,
			ClassName:     "Class 5",
			AcademicYear:  "2025-2026",
			AmountPaid:    amount,
			PaymentDate:   time.Now().UTC(),
			PaymentMethod: fees.MethodCash,
			ReceiptNumber: "RCP-TEST",
			RecordedBy:    admin.ID,
		})
		require.NoError(t, err)
	}
	seedPayment(2000)
	seedPayment(1500)
	db.SeedConcession(fees.Concession{
		StudentID:    student.ID,
		SchoolID:     sch.ID,
		AcademicYear: "2025-2026",
		Amount:       500,
		Reason:       "sibling discount",
	})

	path := "/api/fees/summary?" + url.Values{
		"student_id":    {student.ID},
		"academic_year": {"2025-2026"},
	}.Encode()

	want := fees.Summary{
		TotalFee:         10000,
		TotalPaid:        3500,
		TotalConcessions: 500,
		NetPayable:       9500,
		TotalDue:         6000,
		PercentagePaid:   37,
	}

	t.Run("staff reads any student of their school", func(t *testing.T) {
		rec := do(t, httpTest{name: "staff", path: path, token: getToken(t, admin)})
		var data fees.Summary
		decodeData(t, rec, &data)
		assert.Equal(t, want, data)
	})

	t.Run("student defaults to self", func(t *testing.T) {
		rec := do(t, httpTest{
			name:  "self",
			path:  "/api/fees/summary?" + url.Values{"academic_year": {"2025-2026"}}.Encode(),
			token: getToken(t, student),
		})
		var data fees.Summary
		decodeData(t, rec, &data)
		assert.Equal(t, want, data)
	})

	t.Run("student cannot read another student", func(t *testing.T) {
		do(t, httpTest{
			name: "peeking", path: path, token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: errNotFoundBody,
		})
	})

	t.Run("other academic year is all zero but for the fee", func(t *testing.T) {
		rec := do(t, httpTest{
			name: "other year",
			path: "/api/fees/summary?" + url.Values{
				"student_id":    {student.ID},
				"academic_year": {"2024-2025"},
			}.Encode(),
			token: getToken(t, admin),
		})
		var data fees.Summary
		decodeData(t, rec, &data)
		assert.Equal(t, fees.Summary{TotalFee: 10000, NetPayable: 10000, TotalDue: 10000}, data)
	})
}
