package fees

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusflow/campusflow/core"
)

// Payment methods accepted by the recording form.
const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodOnline = "online"
	MethodCheque = "cheque"
)

type (
	// Payment is an immutable record of one fee payment. Identifying keys
	// (student, school, receipt) never change; other fields may be revised
	// via UpdatePayment. Payments are never deleted.
	Payment struct {
		ID            string    `json:"id" bson:"_id,omitempty"`
		StudentID     string    `json:"student_id" bson:"studentId"`
		SchoolID      string    `json:"school_id" bson:"schoolId"`
		ClassName     string    `json:"class_name" bson:"className"`
		AcademicYear  string    `json:"academic_year" bson:"academicYear"`
		AmountPaid    float64   `json:"amount_paid" bson:"amountPaid"`
		PaymentDate   time.Time `json:"payment_date" bson:"paymentDate"`
		PaymentMethod string    `json:"payment_method" bson:"paymentMethod"`
		Purpose       string    `json:"purpose,omitempty" bson:"purpose,omitempty"`
		ReceiptNumber string    `json:"receipt_number" bson:"receiptNumber"`
		RecordedBy    string    `json:"recorded_by" bson:"recordedBy"`
		CreatedAt     time.Time `json:"created_at" bson:"createdAt"`
		UpdatedAt     time.Time `json:"updated_at" bson:"updatedAt"`
	}

	// Concession is a credit against a student's dues for one academic
	// year. This layer only ever sums concessions; they are granted
	// elsewhere.
	Concession struct {
		ID           string    `json:"id" bson:"_id,omitempty"`
		StudentID    string    `json:"student_id" bson:"studentId"`
		SchoolID     string    `json:"school_id" bson:"schoolId"`
		AcademicYear string    `json:"academic_year" bson:"academicYear"`
		Amount       float64   `json:"amount" bson:"amount"`
		Reason       string    `json:"reason,omitempty" bson:"reason,omitempty"`
		CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
	}
)

// NewPayment contains information needed to record a fee payment.
type NewPayment struct {
	StudentID     string    `json:"student_id" validate:"required,objectid"`
	SchoolID      string    `json:"school_id" validate:"required,objectid"`
	ClassName     string    `json:"class_name" validate:"required"`
	AcademicYear  string    `json:"academic_year" validate:"required,acadyear"`
	AmountPaid    float64   `json:"amount_paid" validate:"required,gt=0"`
	PaymentDate   time.Time `json:"payment_date" validate:"required"`
	PaymentMethod string    `json:"payment_method" validate:"required,oneof=cash card online cheque"`
	Purpose       string    `json:"purpose"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.ClassName = core.CleanString(np.ClassName)
	np.Purpose = core.CleanString(np.Purpose)
	return validate.Struct(np)
}

// UpdatePayment revises the non-identifying fields of a recorded payment.
type UpdatePayment struct {
	AmountPaid    float64    `json:"amount_paid" validate:"omitempty,gt=0"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod string     `json:"payment_method" validate:"omitempty,oneof=cash card online cheque"`
	Purpose       string     `json:"purpose"`
}

func (up *UpdatePayment) Validate(validate *validator.Validate) error {
	up.Purpose = core.CleanString(up.Purpose)
	return validate.Struct(up)
}

// QueryFilter applies an AND operation on its non-zero fields.
type QueryFilter struct {
	StudentID    string `query:"student_id"`
	SchoolID     string `query:"school_id"`
	ClassName    string `query:"class_name"`
	AcademicYear string `query:"academic_year"`
}
