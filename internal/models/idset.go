package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// IDSet is a set of user IDs kept in insertion order. It is stored in a
// single column of the owning row so that one row update is one atomic
// write of every relationship set.
type IDSet []uint

func (s IDSet) Contains(id uint) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add inserts id and reports whether the set changed.
func (s *IDSet) Add(id uint) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove deletes id and reports whether the set changed.
func (s *IDSet) Remove(id uint) bool {
	for i, v := range *s {
		if v == id {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

func (s IDSet) Len() int { return len(s) }

// Value encodes the set as a PostgreSQL array literal.
func (s IDSet) Value() (driver.Value, error) {
	arr := make(pq.Int64Array, len(s))
	for i, v := range s {
		arr[i] = int64(v)
	}
	return arr.Value()
}

func (s *IDSet) Scan(src interface{}) error {
	var arr pq.Int64Array
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("scan id set: %w", err)
	}
	out := make(IDSet, 0, len(arr))
	for _, v := range arr {
		if v < 0 {
			return fmt.Errorf("scan id set: negative id %d", v)
		}
		out.Add(uint(v))
	}
	*s = out
	return nil
}

func (IDSet) GormDataType() string {
	return "idset"
}

func (IDSet) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "bigint[]"
	}
	return "text"
}
