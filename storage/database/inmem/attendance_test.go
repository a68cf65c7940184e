package inmemdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/attendance"
)

func newRepo(t *testing.T) *attendanceRepository {
	t.Helper()
	db, err := Open()
	require.NoError(t, err)
	return NewAttendanceRepository(db)
}

func TestAttendanceRepository_LoadRecords(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	amani := repo.AddRecord(attendance.Record{StudentName: "Amani", Attendance: attendance.Matrix{"1": {"period1": true}}})
	beatrice := repo.AddRecord(attendance.Record{StudentName: "Beatrice"})
	require.Equal(t, 1, amani.ID)
	require.Equal(t, 2, beatrice.ID)

	records, err := repo.LoadRecords(ctx, "2021-03")
	require.NoError(t, err)
	require.Len(t, records, 2)
	// insertion order
	assert.Equal(t, "Amani", records[0].StudentName)
	assert.Equal(t, "Beatrice", records[1].StudentName)

	// handed-out matrices never share state with the table
	records[0].Attendance["1"]["period1"] = false
	reloaded, err := repo.LoadRecords(ctx, "2021-03")
	require.NoError(t, err)
	assert.Equal(t, true, reloaded[0].Attendance["1"]["period1"])
}

func TestAttendanceRepository_SaveMark(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	rec := repo.AddRecord(attendance.Record{StudentName: "Amani"})

	m := attendance.Mark{StudentID: rec.ID, Day: "5", Period: "period1", Status: attendance.StatusLate, MonthYear: "2021-03"}
	require.NoError(t, repo.SaveMark(ctx, m))

	records, err := repo.LoadRecords(ctx, "2021-03")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, records[0].Attendance["5"]["period1"])

	// unknown students are refused, not dropped
	err = repo.SaveMark(ctx, attendance.Mark{StudentID: 99, Day: "5", Period: "period1", Status: attendance.StatusLate, MonthYear: "2021-03"})
	var rejected *attendance.RejectedError
	require.True(t, errors.As(err, &rejected))

	// injected failures surface as-is
	boom := errors.New("boom")
	repo.FailSavesWith(boom)
	assert.Equal(t, boom, repo.SaveMark(ctx, m))
	repo.FailSavesWith(nil)
	assert.NoError(t, repo.SaveMark(ctx, m))
}

func TestAttendanceRepository_SeedLegacyMark(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	rec, err := repo.CreateStudent(ctx, attendance.Record{StudentName: "Amani"})
	require.NoError(t, err)

	require.NoError(t, repo.SeedLegacyMark(ctx, rec.ID, "2021-03", "1", "period1", false))

	records, err := repo.LoadRecords(ctx, "2021-03")
	require.NoError(t, err)
	assert.Equal(t, false, records[0].Attendance["1"]["period1"])

	err = repo.SeedLegacyMark(ctx, 99, "2021-03", "1", "period1", true)
	var rejected *attendance.RejectedError
	require.True(t, errors.As(err, &rejected))
}
