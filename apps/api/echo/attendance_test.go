package echoapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/user"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func seedRoster(t *testing.T, svc *attendance.Service, repo testRepo) (amani, beatrice attendance.Record) {
	t.Helper()

	amani = repo.AddRecord(attendance.Record{
		StudentName: "Amani Kalenga",
		StudentCode: null.StringFrom("STU-001"),
		Grade:       null.StringFrom("7"),
		Section:     null.StringFrom("A"),
		Attendance:  attendance.Matrix{"15": {"period1": false}}, // legacy bool
	})
	beatrice = repo.AddRecord(attendance.Record{
		StudentName: "Beatrice Mwamba",
		StudentCode: null.StringFrom("STU-002"),
		Grade:       null.StringFrom("7"),
		Section:     null.StringFrom("B"),
		Attendance:  attendance.Matrix{"15": {"period1": "present"}},
	})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() failed, %v", err)
	}
	return amani, beatrice
}

func Test_attendanceAPI_sheet(t *testing.T) {
	app, svc, repo := setup(t)
	seedRoster(t, svc, repo)

	origTodayFunc := todayFunc
	defer func() { todayFunc = origTodayFunc }()
	todayFunc = func() string { return "2021-03-15" }

	adminToken := getToken(t, user.Actor{ID: 1, Username: "admin", Roles: []string{user.RoleAdmin}})
	studentToken := getToken(t, user.Actor{ID: 2, Username: "student", Roles: []string{user.RoleStudent}})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/attendance")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("default date is today", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance", studentToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
		var sheet attendance.Sheet
		if err := json.Unmarshal(rec.Body.Bytes(), &sheet); err != nil {
			t.Fatalf("unmarshalling sheet: %v", err)
		}
		if sheet.Day != "15" || sheet.MonthYear != "2021-03" {
			t.Errorf("day/month = %s/%s, want 15/2021-03", sheet.Day, sheet.MonthYear)
		}
		if sheet.Editable {
			t.Error("editable = true for student")
		}
		if len(sheet.Records) != 2 {
			t.Errorf("records = %d, want 2", len(sheet.Records))
		}
		want := attendance.Stats{Present: 1, Absent: 1, Total: 2}
		if sheet.Stats != want {
			t.Errorf("stats = %+v, want %+v", sheet.Stats, want)
		}
	})

	t.Run("filtered for admin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance?date=2021-03-15&grade=7&section=A", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
		var sheet attendance.Sheet
		if err := json.Unmarshal(rec.Body.Bytes(), &sheet); err != nil {
			t.Fatalf("unmarshalling sheet: %v", err)
		}
		if !sheet.Editable {
			t.Error("editable = false for admin")
		}
		if len(sheet.Records) != 1 || sheet.Records[0].StudentName != "Amani Kalenga" {
			t.Errorf("records = %+v, want [Amani Kalenga]", sheet.Records)
		}
		want := attendance.Stats{Absent: 1, Total: 1}
		if sheet.Stats != want {
			t.Errorf("stats = %+v, want %+v", sheet.Stats, want)
		}
	})

	t.Run("search", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance?date=2021-03-15&search=stu-002", adminToken)
		app.ServeHTTP(rec, req)
		var sheet attendance.Sheet
		if err := json.Unmarshal(rec.Body.Bytes(), &sheet); err != nil {
			t.Fatalf("unmarshalling sheet: %v", err)
		}
		if len(sheet.Records) != 1 || sheet.Records[0].StudentName != "Beatrice Mwamba" {
			t.Errorf("records = %+v, want [Beatrice Mwamba]", sheet.Records)
		}
	})
}

func Test_attendanceAPI_stats(t *testing.T) {
	app, svc, repo := setup(t)
	seedRoster(t, svc, repo)

	token := getToken(t, user.Actor{ID: 2, Username: "student", Roles: []string{user.RoleStudent}})

	tests := []httpTest{
		{name: "auth required", path: "/v1/attendance/stats", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "stats for date", path: "/v1/attendance/stats?date=2021-03-15", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, attendance.Stats{Present: 1, Absent: 1, Total: 2})},
		{name: "empty day", path: "/v1/attendance/stats?date=2021-03-20", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, attendance.Stats{Total: 2})},
		{name: "filtered", path: "/v1/attendance/stats?date=2021-03-15&section=A", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, attendance.Stats{Absent: 1, Total: 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_attendanceAPI_periods(t *testing.T) {
	app, svc, repo := setup(t)
	seedRoster(t, svc, repo)

	token := getToken(t, user.Actor{ID: 2, Username: "student", Roles: []string{user.RoleStudent}})

	req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/periods", token)
	app.ServeHTTP(rec, req)
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, map[string]interface{}{"periods": conf.Attendance.Periods}),
	}
	checkCodeAndData(t, tt, rec)
}

func Test_attendanceAPI_setStatus(t *testing.T) {
	app, svc, repo := setup(t)
	amani, _ := seedRoster(t, svc, repo)

	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	adminToken := getToken(t, user.Actor{ID: 1, Username: "admin", Roles: []string{user.RoleAdmin}})
	secretaryToken := getToken(t, user.Actor{ID: 2, Username: "secretary", Roles: []string{user.RoleSecretary}})
	studentToken := getToken(t, user.Actor{ID: 3, Username: "student", Roles: []string{user.RoleStudent}})

	change := func(studentID int, day, period string, status attendance.Status, date string) []byte {
		return marchallObj(t, attendance.StatusChange{
			StudentID: studentID, Day: day, Period: period, Status: status, Date: date,
		})
	}

	tests := []httpTest{
		{name: "auth required", body: change(amani.ID, "", "period1", attendance.StatusLate, today),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "student is read-only", token: studentToken, body: change(amani.ID, "", "period1", attendance.StatusLate, today),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "secretary cannot edit yesterday", token: secretaryToken, body: change(amani.ID, "", "period1", attendance.StatusLate, yesterday),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "attendance for this day is not editable"})},
		{name: "secretary edits today", token: secretaryToken, body: change(amani.ID, "", "period1", attendance.StatusLate, today),
			wantCode: http.StatusOK},
		{name: "admin edits any date", token: adminToken, body: change(amani.ID, "", "period2", attendance.StatusExcused, "2021-03-15"),
			wantCode: http.StatusOK},
		{name: "invalid status", token: adminToken, body: change(amani.ID, "", "period1", "tardy", today),
			wantCode: http.StatusBadRequest},
		{name: "bad day key", token: adminToken, body: change(amani.ID, "32", "period1", attendance.StatusLate, today),
			wantCode: http.StatusBadRequest},
		{name: "unknown period", token: adminToken, body: change(amani.ID, "", "period9", attendance.StatusLate, today),
			wantCode: http.StatusBadRequest},
		{name: "missing date", token: adminToken, body: change(amani.ID, "", "period1", attendance.StatusLate, ""),
			wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/v1/attendance/marks", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("confirmed write returns the updated record", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/attendance/marks", adminToken,
			change(amani.ID, "", "period3", attendance.StatusAbsent, "2021-03-15"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
		var res markResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if !res.Success || res.Data == nil {
			t.Fatalf("response = %+v, want success with data", res)
		}
		if res.Data.Attendance["15"]["period3"] != "absent" {
			t.Errorf("cell = %v, want absent", res.Data.Attendance["15"]["period3"])
		}
	})

	t.Run("failed write reverts and reports", func(t *testing.T) {
		repo.FailSavesWith(errors.New("connection reset"))
		defer repo.FailSavesWith(nil)

		req, rec := newAuthRequest(http.MethodPut, "/v1/attendance/marks", adminToken,
			change(amani.ID, "", "period4", attendance.StatusPresent, "2021-03-15"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("code = %d, want 502; body %s", rec.Code, rec.Body.String())
		}
		var res markResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.Success || res.Error == "" {
			t.Fatalf("response = %+v, want failure with error", res)
		}
		// the working set reads back the pre-mutation state
		rec2, err := svc.Store().Get(amani.ID)
		if err != nil {
			t.Fatalf("Get() failed, %v", err)
		}
		if _, ok := rec2.Attendance.Cell("15", "period4"); ok {
			t.Error("optimistic mark survived the revert")
		}
	})
}
