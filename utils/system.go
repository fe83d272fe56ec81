// stickybans/utils/system.go
package utils

import (
	"time"
)

// SQLTimeLayout matches the DATETIME text format used by the game database.
const SQLTimeLayout = "2006-01-02 15:04:05"

// GetSQLTime returns the current time in UTC for database storage.
func GetSQLTime() time.Time {
	return time.Now().UTC()
}

// FormatSQLTime renders t in the database's DATETIME layout.
func FormatSQLTime(t time.Time) string {
	return t.UTC().Format(SQLTimeLayout)
}

// BtoI converts a boolean to an integer (1 for true, 0 for false).
func BtoI(b bool) int {
	if b {
		return 1
	}
	return 0
}
