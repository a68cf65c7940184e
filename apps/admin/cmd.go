package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

var errHelp = errors.New("help provided")

// attendanceRepository is attendance.Repository plus the seeding helpers the
// SQL and in-memory repositories both provide.
type attendanceRepository interface {
	attendance.Repository
	CreateStudent(ctx context.Context, rec attendance.Record) (attendance.Record, error)
	SeedLegacyMark(ctx context.Context, studentID int, monthYear, day, period string, present bool) error
}

type commandLine struct {
	db     *sql.DB
	repo   attendanceRepository
	conf   *core.Config
	logger core.Logger
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run DB migrations (up|up-by-one|up-to|down|down-to|redo|reset|status|version|create|fix)")
	fmt.Println("  seeddemo - seed a demo roster with attendance marks for the current month")
	fmt.Println("  absencereport -date DATE - print the absence report for DATE (YYYY-MM-DD)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	absenceReportCmd := flag.NewFlagSet("absencereport", flag.ExitOnError)
	absenceReportDate := absenceReportCmd.String("date", "", "The report date, YYYY-MM-DD.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seeddemo":
		return cli.seedDemo(context.Background())
	case "absencereport":
		if err := absenceReportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *absenceReportDate == "" {
			absenceReportCmd.Usage()
			return errHelp
		}
		return cli.absenceReport(context.Background(), *absenceReportDate)
	default:
		cli.printUsage()
		return errHelp
	}
}
