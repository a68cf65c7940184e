package attendance

import (
	"errors"
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrRecordNotFound = errors.New("attendance record not found")
)

// FilterAll is the sentinel meaning "no filter on this dimension".
const FilterAll = "all"

type (
	// DayMarks maps a period key to its recorded cell value. A cell holds
	// either a canonical Status string or a legacy boolean; readers classify
	// cells through Normalize. A missing period key means "not recorded".
	DayMarks map[string]interface{}

	// Matrix maps a day-of-month key ("1".."31") to its period marks. Only
	// days that have been explicitly recorded appear as keys.
	Matrix map[string]DayMarks

	// Record is one student's attendance matrix for the loaded month context.
	Record struct {
		ID          int         `json:"id"`
		StudentName string      `json:"student_name"`
		StudentCode null.String `json:"student_id"`
		Grade       null.String `json:"grade"`
		Section     null.String `json:"section"`
		Attendance  Matrix      `json:"attendance"`
	}
)

// Cell returns the raw cell value for (day, period) and whether it is recorded.
func (m Matrix) Cell(day, period string) (interface{}, bool) {
	marks, ok := m[day]
	if !ok {
		return nil, false
	}
	raw, ok := marks[period]
	return raw, ok
}

// withMark produces a new Record with the (day, period) cell set to st.
// Copy-on-write: only the path from the record down to the mutated cell is
// fresh; all other day maps are shared by reference with the receiver.
func (r Record) withMark(day, period string, st Status) Record {
	return r.withCell(day, period, st, true)
}

// withCell sets or clears one raw cell along the same copy-on-write path.
// recorded=false removes the cell; a day map left empty is dropped so the
// record reads exactly as it did before the cell was ever written.
func (r Record) withCell(day, period string, raw interface{}, recorded bool) Record {
	matrix := make(Matrix, len(r.Attendance)+1)
	for d, marks := range r.Attendance {
		matrix[d] = marks
	}

	marks := make(DayMarks, len(r.Attendance[day])+1)
	for p, v := range r.Attendance[day] {
		marks[p] = v
	}
	if recorded {
		marks[period] = raw
	} else {
		delete(marks, period)
	}

	if len(marks) == 0 {
		delete(matrix, day)
	} else {
		matrix[day] = marks
	}
	r.Attendance = matrix
	return r
}

// Mark is one persisted status change, keyed by student + day + period within
// a month context. It is the unit of the remote write contract.
type Mark struct {
	StudentID int    `json:"student_id" validate:"required"`
	Day       string `json:"day" validate:"required,daykey"`
	Period    string `json:"period" validate:"required"`
	Status    Status `json:"status" validate:"required,attendancestatus"`
	MonthYear string `json:"month_year" validate:"required"`
}

func (m *Mark) Validate() error {
	m.Day = core.CleanString(m.Day)
	m.Period = core.CleanString(m.Period, true /* lower */)
	return core.Validate.Struct(m)
}

// QueryFilter narrows a record set; fields combine with AND.
// "all" (or empty) on grade/section means no filter on that dimension.
type QueryFilter struct {
	Search  string `query:"search"`
	Grade   string `query:"grade"`
	Section string `query:"section"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Grade = cleanDimension(qf.Grade)
	qf.Section = cleanDimension(qf.Section)
}

func cleanDimension(s string) string {
	s = core.CleanString(s)
	if strings.EqualFold(s, FilterAll) {
		return ""
	}
	return s
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Grade == "" && qf.Section == ""
}

// Match reports whether the record satisfies the filter. Search does a
// case-insensitive substring match on the student name or code, and a
// substring match on the stringified numeric ID.
func (qf QueryFilter) Match(r Record) bool {
	if qf.Grade != "" && r.Grade.String != qf.Grade {
		return false
	}
	if qf.Section != "" && r.Section.String != qf.Section {
		return false
	}
	if qf.Search != "" {
		search := strings.ToLower(qf.Search)
		if strings.Contains(strings.ToLower(r.StudentName), search) {
			return true
		}
		if strings.Contains(strconv.Itoa(r.ID), search) {
			return true
		}
		if r.StudentCode.Valid && strings.Contains(strings.ToLower(r.StudentCode.String), search) {
			return true
		}
		return false
	}
	return true
}
