// Package inmem provides in-memory repositories used by tests and by the
// API server's -mem mode. Natural-key uniqueness is enforced the same way
// the mongo repositories enforce it with unique indexes.
package inmem

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campusflow/campusflow/core/assessment"
	"github.com/campusflow/campusflow/core/attendance"
	"github.com/campusflow/campusflow/core/fees"
	"github.com/campusflow/campusflow/core/report"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/subject"
	"github.com/campusflow/campusflow/core/user"
)

type (
	DB struct {
		user       *userTable
		school     *schoolTable
		class      *classTable
		subject    *subjectTable
		payment    *paymentTable
		concession *concessionTable
		attendance *attendanceTable
		scheme     *schemeTable
		marks      *marksTable
		report     *reportTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	schoolTable struct {
		sync.RWMutex
		table map[string]*school.School
	}
	classTable struct {
		sync.RWMutex
		table map[string]*school.Class
	}
	subjectTable struct {
		sync.RWMutex
		table map[string]*subject.Subject
	}
	paymentTable struct {
		sync.RWMutex
		table map[string]*fees.Payment
	}
	concessionTable struct {
		sync.RWMutex
		table map[string]*fees.Concession
	}
	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.MonthlyRecord
	}
	schemeTable struct {
		sync.RWMutex
		table map[string]*assessment.Scheme
	}
	marksTable struct {
		sync.RWMutex
		table map[string]*assessment.StudentMarks
	}
	reportTable struct {
		sync.RWMutex
		table map[string]*report.ReportCard
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		school:     &schoolTable{table: make(map[string]*school.School)},
		class:      &classTable{table: make(map[string]*school.Class)},
		subject:    &subjectTable{table: make(map[string]*subject.Subject)},
		payment:    &paymentTable{table: make(map[string]*fees.Payment)},
		concession: &concessionTable{table: make(map[string]*fees.Concession)},
		attendance: &attendanceTable{table: make(map[string]*attendance.MonthlyRecord)},
		scheme:     &schemeTable{table: make(map[string]*assessment.Scheme)},
		marks:      &marksTable{table: make(map[string]*assessment.StudentMarks)},
		report:     &reportTable{table: make(map[string]*report.ReportCard)},
	}
	return db, nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// ResetData clears every table except users with role superadmin.
func (db *DB) ResetData(ctx context.Context) error {
	db.user.Lock()
	for id, usr := range db.user.table {
		if usr.Role != user.RoleSuperAdmin {
			delete(db.user.table, id)
		}
	}
	db.user.Unlock()

	db.school.Lock()
	db.school.table = make(map[string]*school.School)
	db.school.Unlock()
	db.class.Lock()
	db.class.table = make(map[string]*school.Class)
	db.class.Unlock()
	db.subject.Lock()
	db.subject.table = make(map[string]*subject.Subject)
	db.subject.Unlock()
	db.payment.Lock()
	db.payment.table = make(map[string]*fees.Payment)
	db.payment.Unlock()
	db.concession.Lock()
	db.concession.table = make(map[string]*fees.Concession)
	db.concession.Unlock()
	db.attendance.Lock()
	db.attendance.table = make(map[string]*attendance.MonthlyRecord)
	db.attendance.Unlock()
	db.scheme.Lock()
	db.scheme.table = make(map[string]*assessment.Scheme)
	db.scheme.Unlock()
	db.marks.Lock()
	db.marks.table = make(map[string]*assessment.StudentMarks)
	db.marks.Unlock()
	db.report.Lock()
	db.report.table = make(map[string]*report.ReportCard)
	db.report.Unlock()
	return nil
}

// SeedConcession inserts a concession directly. Concessions are read-only
// at the service layer; tests and the admin CLI seed them here.
func (db *DB) SeedConcession(c fees.Concession) fees.Concession {
	db.concession.Lock()
	defer db.concession.Unlock()

	if c.ID == "" {
		c.ID = newID()
	}
	db.concession.table[c.ID] = &c
	return c
}
