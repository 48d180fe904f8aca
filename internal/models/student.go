// Package models holds the canonical records every repository method
// returns, independent of the dialect that produced them.
package models

// ClassNotAvailable replaces a missing or blank class on every read path.
const ClassNotAvailable = "N/A"

// Student is a row of the students table.
type Student struct {
	ID     int64  `json:"id"`
	RollNo int    `json:"roll_no"`
	Name   string `json:"name"`
	Class  string `json:"class"`
}
