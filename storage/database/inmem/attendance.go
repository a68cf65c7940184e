package inmemdb

import (
	"context"

	"github.com/trezcool/darasa/core/attendance"
)

// attendanceRepository is an in-memory attendance.Repository for local dev
// and tests. Marks are keyed per month like the SQL schema; records hand out
// copied matrices so callers never share map state with the table.
type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

// AddRecord inserts a roster record, assigning an ID when none is set.
func (repo *attendanceRepository) AddRecord(rec attendance.Record) attendance.Record {
	repo.db.Lock()
	defer repo.db.Unlock()

	if rec.ID == 0 {
		repo.db.pkCount++
		rec.ID = repo.db.pkCount
	} else if rec.ID > repo.db.pkCount {
		repo.db.pkCount = rec.ID
	}
	if rec.Attendance == nil {
		rec.Attendance = make(attendance.Matrix)
	}
	repo.db.records[rec.ID] = rec
	repo.db.order = append(repo.db.order, rec.ID)
	return rec
}

// CreateStudent inserts a roster row; mirrors the SQL repository's seeding helper.
func (repo *attendanceRepository) CreateStudent(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = 0
	return repo.AddRecord(rec), nil
}

// SeedLegacyMark writes a mark cell in the pre-enum boolean encoding.
func (repo *attendanceRepository) SeedLegacyMark(_ context.Context, studentID int, _, day, period string, present bool) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.records[studentID]
	if !ok {
		return &attendance.RejectedError{Reason: "unknown student"}
	}
	matrix := copyMatrix(rec.Attendance)
	if _, ok := matrix[day]; !ok {
		matrix[day] = make(attendance.DayMarks)
	}
	matrix[day][period] = present
	rec.Attendance = matrix
	repo.db.records[studentID] = rec
	return nil
}

// FailSavesWith makes subsequent SaveMark calls fail with err (nil resets).
func (repo *attendanceRepository) FailSavesWith(err error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.saveErr = err
}

func (repo *attendanceRepository) LoadRecords(_ context.Context, _ string) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		rec := repo.db.records[id]
		rec.Attendance = copyMatrix(rec.Attendance)
		records = append(records, rec)
	}
	return records, nil
}

func (repo *attendanceRepository) SaveMark(_ context.Context, m attendance.Mark) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.saveErr != nil {
		return repo.db.saveErr
	}

	rec, ok := repo.db.records[m.StudentID]
	if !ok {
		return &attendance.RejectedError{Reason: "unknown student"}
	}

	matrix := copyMatrix(rec.Attendance)
	if _, ok := matrix[m.Day]; !ok {
		matrix[m.Day] = make(attendance.DayMarks)
	}
	matrix[m.Day][m.Period] = m.Status
	rec.Attendance = matrix
	repo.db.records[m.StudentID] = rec
	return nil
}

func copyMatrix(m attendance.Matrix) attendance.Matrix {
	matrix := make(attendance.Matrix, len(m))
	for day, marks := range m {
		dayMarks := make(attendance.DayMarks, len(marks))
		for period, raw := range marks {
			dayMarks[period] = raw
		}
		matrix[day] = dayMarks
	}
	return matrix
}
