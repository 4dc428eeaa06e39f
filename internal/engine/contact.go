package engine

import "github.com/tartampluch/go-lich/internal/lich"

// ContactAdvice is the compatibility of one contact with a given day.
// Only contacts whose birthday carries a year are surveyed.
type ContactAdvice struct {
	// UID is a deterministic UUIDv5 derived from name and birth date.
	UID string `json:"uid"`

	Name      string    `json:"name"`
	BirthDate lich.Date `json:"birthDate"`
	BirthChi  lich.Chi  `json:"birthChi"`

	// Age is the target year minus the birth year.
	Age int `json:"age"`

	Compatibility lich.Compatibility `json:"compatibility"`
	Band          lich.Band          `json:"band"`
}
