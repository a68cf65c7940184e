package attendance

import "fmt"

// Status is the canonical attendance status of one period cell.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

var AllStatuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Valid returns true when the status is a supported canonical value.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	default:
		return false
	}
}

// InvalidStatusError reports a persisted cell value that is neither a
// canonical status nor the legacy boolean encoding.
type InvalidStatusError struct {
	Value interface{}
}

func (err *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid attendance status %#v", err.Value)
}

// Normalize folds the legacy boolean encoding (true=present, false=absent)
// and the canonical string encoding into one Status. It is the single place
// legacy compatibility lives; all readers classify cells through it.
//
// The second return reports whether the cell is recorded at all: a nil cell
// is "not recorded", which is distinct from absent.
func Normalize(raw interface{}) (Status, bool, error) {
	switch v := raw.(type) {
	case nil:
		return "", false, nil
	case bool:
		if v {
			return StatusPresent, true, nil
		}
		return StatusAbsent, true, nil
	case Status:
		if v.Valid() {
			return v, true, nil
		}
	case string:
		if st := Status(v); st.Valid() {
			return st, true, nil
		}
	}
	return "", false, &InvalidStatusError{Value: raw}
}
