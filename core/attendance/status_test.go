package attendance

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		raw          interface{}
		wantStatus   Status
		wantRecorded bool
		wantErr      bool
	}{
		{name: "nil is not recorded", raw: nil},
		{name: "legacy true", raw: true, wantStatus: StatusPresent, wantRecorded: true},
		{name: "legacy false", raw: false, wantStatus: StatusAbsent, wantRecorded: true},
		{name: "present string", raw: "present", wantStatus: StatusPresent, wantRecorded: true},
		{name: "absent string", raw: "absent", wantStatus: StatusAbsent, wantRecorded: true},
		{name: "late string", raw: "late", wantStatus: StatusLate, wantRecorded: true},
		{name: "excused string", raw: "excused", wantStatus: StatusExcused, wantRecorded: true},
		{name: "status value", raw: StatusLate, wantStatus: StatusLate, wantRecorded: true},
		{name: "unknown string", raw: "tardy", wantErr: true},
		{name: "unknown status value", raw: Status("lol"), wantErr: true},
		{name: "unexpected type", raw: 5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, recorded, err := Normalize(tt.raw)
			if tt.wantErr {
				var invalidErr *InvalidStatusError
				if !errors.As(err, &invalidErr) {
					t.Fatalf("Normalize() error = %v, want *InvalidStatusError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() unexpected error = %v", err)
			}
			if st != tt.wantStatus {
				t.Errorf("Normalize() status = %v, want %v", st, tt.wantStatus)
			}
			if recorded != tt.wantRecorded {
				t.Errorf("Normalize() recorded = %v, want %v", recorded, tt.wantRecorded)
			}
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, st := range AllStatuses {
		if !st.Valid() {
			t.Errorf("%q.Valid() = false, want true", st)
		}
	}
	if Status("tardy").Valid() {
		t.Error(`Status("tardy").Valid() = true, want false`)
	}
	if Status("").Valid() {
		t.Error(`Status("").Valid() = true, want false`)
	}
}
