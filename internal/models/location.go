package models

// Location is a best-effort coordinate pair attached to chat sends so the
// backend can localize crisis resources. The zero value means "unknown".
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Known     bool    `json:"-"`
}
