package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/darasa/core/attendance"
	emailsvc "github.com/trezcool/darasa/services/email"
)

// absenceReport prints the absence report for the given date over the
// persisted dataset.
func (cli *commandLine) absenceReport(ctx context.Context, date string) error {
	svc := attendance.NewService(cli.repo, emailsvc.NewConsoleService(cli.conf), cli.logger, cli.conf)
	if err := svc.Load(ctx); err != nil {
		return err
	}

	report := svc.BuildAbsenceReport(date, attendance.QueryFilter{})

	fmt.Fprintf(cli.out, "Absence report for %s (day %s)\n", report.Date, report.Day)
	fmt.Fprintf(cli.out, "present: %d  absent: %d  late: %d  excused: %d  total: %d\n\n",
		report.Stats.Present, report.Stats.Absent, report.Stats.Late, report.Stats.Excused, report.Stats.Total)

	if len(report.Absences) == 0 {
		fmt.Fprintln(cli.out, "No absences recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tID\tGRADE\tSECTION\tPERIODS")
	for _, line := range report.Absences {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			line.StudentName, line.StudentCode, line.Grade, line.Section, strings.Join(line.Periods, ", "))
	}
	return w.Flush()
}
