package attendance

// Stats are the derived per-day counts for a record set. Total counts
// students; the four buckets count recorded period cells. Cells that are
// unrecorded (or carry an unrecognized persisted value) land in no bucket.
type Stats struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Total   int `json:"total"`
}

// Aggregate derives the day's stats over an (already filtered) record set.
// It is pure: stats are re-derivable at any time from a store snapshot and a
// day key, so the displayed counts can never drift from the optimistic state.
func Aggregate(records []Record, day string) Stats {
	stats := Stats{Total: len(records)}
	for _, r := range records {
		for _, raw := range r.Attendance[day] {
			st, recorded, err := Normalize(raw)
			if err != nil || !recorded {
				continue
			}
			switch st {
			case StatusPresent:
				stats.Present++
			case StatusAbsent:
				stats.Absent++
			case StatusLate:
				stats.Late++
			case StatusExcused:
				stats.Excused++
			}
		}
	}
	return stats
}
