package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sql.DB) *attendanceRepository {
	return &attendanceRepository{db: sqlx.NewDb(db, "postgres")}
}

type studentRow struct {
	ID      int         `db:"id"`
	Name    string      `db:"name"`
	Code    null.String `db:"code"`
	Grade   null.String `db:"grade"`
	Section null.String `db:"section"`
}

type markRow struct {
	StudentID int    `db:"student_id"`
	Day       string `db:"day"`
	Period    string `db:"period"`
	Status    string `db:"status"`
}

// decodeCell maps a persisted status column to a matrix cell value. Rows
// written before the status enum existed hold 'true'/'false'; they surface
// as booleans so attendance.Normalize stays the single compat point.
func decodeCell(status string) interface{} {
	switch status {
	case "true":
		return true
	case "false":
		return false
	default:
		return status
	}
}

var studentOrdering = []core.DBOrdering{
	{Field: "name", Ascending: true},
	{Field: "id", Ascending: true},
}

func orderBy(ords []core.DBOrdering) string {
	terms := make([]string, 0, len(ords))
	for _, ord := range ords {
		terms = append(terms, ord.String())
	}
	return strings.Join(terms, ", ")
}

func (repo attendanceRepository) LoadRecords(ctx context.Context, monthYear string) ([]attendance.Record, error) {
	var students []studentRow
	q := `SELECT id, name, code, grade, section FROM students ORDER BY ` + orderBy(studentOrdering)
	if err := repo.db.SelectContext(ctx, &students, q); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	var marks []markRow
	q = `SELECT student_id, day, period, status FROM attendance_marks WHERE month_year = $1`
	if err := repo.db.SelectContext(ctx, &marks, q, monthYear); err != nil {
		return nil, errors.Wrap(err, "querying attendance marks")
	}

	records := make([]attendance.Record, 0, len(students))
	index := make(map[int]int, len(students))
	for i, s := range students {
		records = append(records, attendance.Record{
			ID:          s.ID,
			StudentName: s.Name,
			StudentCode: s.Code,
			Grade:       s.Grade,
			Section:     s.Section,
			Attendance:  make(attendance.Matrix),
		})
		index[s.ID] = i
	}

	for _, m := range marks {
		i, ok := index[m.StudentID]
		if !ok {
			continue
		}
		matrix := records[i].Attendance
		if _, ok := matrix[m.Day]; !ok {
			matrix[m.Day] = make(attendance.DayMarks)
		}
		matrix[m.Day][m.Period] = decodeCell(m.Status)
	}
	return records, nil
}

func (repo attendanceRepository) SaveMark(ctx context.Context, m attendance.Mark) error {
	q := `
		INSERT INTO attendance_marks (id, student_id, month_year, day, period, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, month_year, day, period)
		DO UPDATE SET status = EXCLUDED.status, updated_at = now()`

	_, err := repo.db.ExecContext(ctx, q, uuid.New().String(), m.StudentID, m.MonthYear, m.Day, m.Period, string(m.Status))
	if err != nil {
		// the server received the write and refused it; anything else is transport
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
			return &attendance.RejectedError{Reason: pqErr.Message}
		}
		return errors.Wrap(err, "saving attendance mark")
	}
	return nil
}

// CreateStudent inserts a roster row. Roster management proper lives in
// another system; this exists for seeding and tests.
func (repo attendanceRepository) CreateStudent(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := `INSERT INTO students (name, code, grade, section) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.QueryRowContext(ctx, q, rec.StudentName, rec.StudentCode, rec.Grade, rec.Section).Scan(&rec.ID); err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting student")
	}
	if rec.Attendance == nil {
		rec.Attendance = make(attendance.Matrix)
	}
	return rec, nil
}

// SeedLegacyMark writes a mark row in the pre-enum boolean encoding.
// Demo/test data only; application writes always use the enum encoding.
func (repo attendanceRepository) SeedLegacyMark(ctx context.Context, studentID int, monthYear, day, period string, present bool) error {
	status := "false"
	if present {
		status = "true"
	}
	q := `
		INSERT INTO attendance_marks (id, student_id, month_year, day, period, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, month_year, day, period)
		DO UPDATE SET status = EXCLUDED.status, updated_at = now()`
	_, err := repo.db.ExecContext(ctx, q, uuid.New().String(), studentID, monthYear, day, period, status)
	return errors.Wrap(err, "seeding legacy attendance mark")
}
