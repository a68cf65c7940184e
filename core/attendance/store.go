package attendance

import "sync"

// Store holds the working set of attendance records for the loaded month
// context. Records are immutable values: mutation goes through ApplyMark
// (copy-on-write), every read hands out record values that share untouched
// day maps with the store's current snapshot.
//
// Only the update Coordinator writes to the store; every other consumer
// reads.
type Store struct {
	mu      sync.RWMutex
	records []Record    // insertion order preserved
	index   map[int]int // record ID -> records offset
}

func NewStore(records []Record) *Store {
	s := &Store{
		records: make([]Record, len(records)),
		index:   make(map[int]int, len(records)),
	}
	copy(s.records, records)
	for i, r := range s.records {
		s.index[r.ID] = i
	}
	return s
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the current record for the student.
func (s *Store) Get(studentID int) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[studentID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return s.records[i], nil
}

// Snapshot returns the current record set in insertion order.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, len(s.records))
	copy(records, s.records)
	return records
}

// Filter returns the records matching the filter, in insertion order.
// It never mutates the store.
func (s *Store) Filter(qf QueryFilter) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if qf.Match(r) {
			records = append(records, r)
		}
	}
	return records
}

// ApplyMark sets the (day, period) cell of the student's record to st and
// returns the new record. The day map materializes on first write with only
// the mutated period set; periods not yet touched stay unrecorded.
func (s *Store) ApplyMark(studentID int, day, period string, st Status) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[studentID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	rec := s.records[i].withMark(day, period, st)
	s.records[i] = rec
	return rec, nil
}

// RestoreCell writes a previously snapshotted cell value back, reverting a
// mark applied to that cell since the snapshot was taken. A cell snapshotted
// as not recorded is removed again. Only the one cell is touched, so marks
// confirmed on other cells in the meantime survive the revert.
func (s *Store) RestoreCell(studentID int, day, period string, raw interface{}, recorded bool) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[studentID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	rec := s.records[i].withCell(day, period, raw, recorded)
	s.records[i] = rec
	return rec, nil
}
