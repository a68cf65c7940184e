package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/attendance"
)

type (
	DB struct {
		attendance *attendanceTable
	}

	attendanceTable struct {
		sync.RWMutex
		pkCount int
		records map[int]attendance.Record
		order   []int
		saveErr error
	}
)

func Open() (*DB, error) {
	db := &DB{
		attendance: &attendanceTable{records: make(map[int]attendance.Record)},
	}
	return db, nil
}
