package attendance

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// ErrDayNotEditable: the actor's role does not allow editing the selected date.
	ErrDayNotEditable = errors.New("attendance for this day is not editable")

	nowFunc = time.Now // mockable
)

type (
	// Repository loads the attendance dataset and persists status changes.
	Repository interface {
		// LoadRecords returns the per-student records for the month context.
		LoadRecords(ctx context.Context, monthYear string) ([]Record, error)
		Writer
	}

	Service struct {
		repo    Repository
		mu      sync.RWMutex // guards coord; Load swaps it wholesale
		coord   *Coordinator
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		coord:   NewCoordinator(NewStore(nil), repo, logger),
		mailSvc: mailSvc,
		logger:  logger,
		conf:    conf,
	}
}

// Load populates the working set from persistence for the current month
// context, replacing the coordinator and its store wholesale. It is meant
// for boot and explicit reloads; in-flight edits against the old store are
// not carried over. Cells carrying an unrecognized persisted status are kept
// (they read as "not recorded") and logged for diagnostics.
func (svc *Service) Load(ctx context.Context) error {
	monthYear := nowFunc().Format(monthYearLayout)
	records, err := svc.repo.LoadRecords(ctx, monthYear)
	if err != nil {
		return pkgerrors.Wrap(err, "loading attendance dataset")
	}

	for _, r := range records {
		for day, marks := range r.Attendance {
			for period, raw := range marks {
				if _, _, err := Normalize(raw); err != nil {
					svc.logger.Warn(
						fmt.Sprintf("student %d has an unrecognized status on day %s, %s; treating as not recorded", r.ID, day, period),
						err,
					)
				}
			}
		}
	}

	svc.mu.Lock()
	svc.coord = NewCoordinator(NewStore(records), svc.repo, svc.logger)
	svc.mu.Unlock()
	return nil
}

func (svc *Service) coordinator() *Coordinator {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.coord
}

// Store exposes the working set for read-only consumers.
func (svc *Service) Store() *Store { return svc.coordinator().Store() }

// Periods returns the configured ordered period set.
func (svc *Service) Periods() []string { return svc.conf.Attendance.Periods }

func (svc *Service) validPeriod(period string) bool {
	for _, p := range svc.conf.Attendance.Periods {
		if p == period {
			return true
		}
	}
	return false
}

// Sheet is the attendance view for one selected date: the day's records
// (filtered), whether the actor may edit them, and the derived stats.
type Sheet struct {
	Day       string   `json:"day"`
	MonthYear string   `json:"month_year"`
	Editable  bool     `json:"editable"`
	Records   []Record `json:"records"`
	Stats     Stats    `json:"stats"`
}

func (svc *Service) Sheet(date string, qf QueryFilter, actor user.Actor) Sheet {
	qf.Clean()
	now := nowFunc()
	day := DayKeyOrDefault(date)
	records := svc.Store().Filter(qf)
	return Sheet{
		Day:       day,
		MonthYear: MonthYear(date, now),
		Editable:  IsEditable(date, now, actor),
		Records:   records,
		Stats:     Aggregate(records, day),
	}
}

// Stats derives the day's counts over the filtered working set.
func (svc *Service) Stats(date string, qf QueryFilter) Stats {
	qf.Clean()
	return Aggregate(svc.Store().Filter(qf), DayKeyOrDefault(date))
}

// StatusChange is one requested cell edit. Day defaults to the day key of
// the selected date when not provided explicitly.
type StatusChange struct {
	StudentID int    `json:"student_id" validate:"required"`
	Day       string `json:"day" validate:"omitempty,daykey"`
	Period    string `json:"period" validate:"required"`
	Status    Status `json:"status" validate:"required,attendancestatus"`
	Date      string `json:"date" validate:"required"`
}

func (sc *StatusChange) Validate() error {
	sc.Day = core.CleanString(sc.Day)
	sc.Period = core.CleanString(sc.Period, true /* lower */)
	sc.Date = core.CleanString(sc.Date)
	return core.Validate.Struct(sc)
}

// SetStatus applies one role-gated status change through the Coordinator.
func (svc *Service) SetStatus(ctx context.Context, actor user.Actor, sc StatusChange) (Result, error) {
	if err := sc.Validate(); err != nil {
		return Result{}, err
	}
	if !svc.validPeriod(sc.Period) {
		return Result{}, core.NewValidationError(nil, core.FieldError{Field: "period", Error: "unknown period"})
	}

	now := nowFunc()
	if !IsEditable(sc.Date, now, actor) {
		return Result{}, ErrDayNotEditable
	}

	day := sc.Day
	if day == "" {
		day = DayKeyOrDefault(sc.Date)
	}
	m := Mark{
		StudentID: sc.StudentID,
		Day:       day,
		Period:    sc.Period,
		Status:    sc.Status,
		MonthYear: MonthYear(sc.Date, now),
	}
	return svc.coordinator().SetStatus(ctx, m)
}

// AbsenceLine is one absent student in a day's report.
type AbsenceLine struct {
	StudentName string   `json:"student_name"`
	StudentCode string   `json:"student_id,omitempty"`
	Grade       string   `json:"grade,omitempty"`
	Section     string   `json:"section,omitempty"`
	Periods     []string `json:"periods"`
}

// AbsenceReport lists the students marked absent on the selected date.
type AbsenceReport struct {
	Date     string        `json:"date"`
	Day      string        `json:"day"`
	Stats    Stats         `json:"stats"`
	Absences []AbsenceLine `json:"absences"`
}

func (svc *Service) BuildAbsenceReport(date string, qf QueryFilter) AbsenceReport {
	qf.Clean()
	day := DayKeyOrDefault(date)
	records := svc.Store().Filter(qf)

	report := AbsenceReport{
		Date:  date,
		Day:   day,
		Stats: Aggregate(records, day),
	}
	for _, r := range records {
		var periods []string
		for _, period := range svc.conf.Attendance.Periods {
			raw, ok := r.Attendance.Cell(day, period)
			if !ok {
				continue
			}
			if st, recorded, err := Normalize(raw); err == nil && recorded && st == StatusAbsent {
				periods = append(periods, period)
			}
		}
		if len(periods) > 0 {
			report.Absences = append(report.Absences, AbsenceLine{
				StudentName: r.StudentName,
				StudentCode: r.StudentCode.String,
				Grade:       r.Grade.String,
				Section:     r.Section.String,
				Periods:     periods,
			})
		}
	}
	return report
}

// SendAbsenceReport emails the day's absence report.
func (svc *Service) SendAbsenceReport(date string, to []mail.Address) {
	report := svc.BuildAbsenceReport(date, QueryFilter{})
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      fmt.Sprintf("Absence report for %s", date),
		TemplateName: "absence-report",
		TemplateData: report,
	})
}
