package main

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/attendance"
)

// seedDemo populates a small roster with attendance marks for the current
// month. Day 1 is seeded in the legacy boolean encoding so the compat path
// stays exercised in demo data.
func (cli *commandLine) seedDemo(ctx context.Context) error {
	now := time.Now()
	monthYear := now.Format("2006-01")
	periods := cli.conf.Attendance.Periods

	students := []attendance.Record{
		{StudentName: "Amani Kalenga", StudentCode: null.StringFrom("STU-001"), Grade: null.StringFrom("7"), Section: null.StringFrom("A")},
		{StudentName: "Beatrice Mwamba", StudentCode: null.StringFrom("STU-002"), Grade: null.StringFrom("7"), Section: null.StringFrom("A")},
		{StudentName: "Chiara Ilunga", StudentCode: null.StringFrom("STU-003"), Grade: null.StringFrom("7"), Section: null.StringFrom("B")},
		{StudentName: "David Tshisekedi", StudentCode: null.StringFrom("STU-004"), Grade: null.StringFrom("8"), Section: null.StringFrom("A")},
		{StudentName: "Esther Kabongo", StudentCode: null.StringFrom("STU-005"), Grade: null.StringFrom("8"), Section: null.StringFrom("B")},
	}

	for i, s := range students {
		rec, err := cli.repo.CreateStudent(ctx, s)
		if err != nil {
			return err
		}

		// day 1: legacy booleans; every third student absent in the first period
		for j, period := range periods {
			present := !(i%3 == 0 && j == 0)
			if err := cli.repo.SeedLegacyMark(ctx, rec.ID, monthYear, "1", period, present); err != nil {
				return err
			}
		}

		// day 2: canonical statuses
		for j, period := range periods {
			status := attendance.StatusPresent
			switch {
			case i == 1 && j == 0:
				status = attendance.StatusLate
			case i == 2:
				status = attendance.StatusAbsent
			case i == 4 && j == len(periods)-1:
				status = attendance.StatusExcused
			}
			m := attendance.Mark{
				StudentID: rec.ID,
				Day:       "2",
				Period:    period,
				Status:    status,
				MonthYear: monthYear,
			}
			if err := cli.repo.SaveMark(ctx, m); err != nil {
				return err
			}
		}

		fmt.Fprintf(cli.out, "seeded %s (id=%d)\n", rec.StudentName, rec.ID)
	}
	return nil
}
