package domain

import "time"

// Clock actions.
const (
	ClockIn  = "in"
	ClockOut = "out"
)

// ClockEntry is one staff shift segment. ClockOut is nil while the
// session is still open.
type ClockEntry struct {
	ID           string     `json:"id"`
	StaffID      string     `json:"staff_id"`
	RestaurantID string     `json:"restaurant_id"`
	ClockIn      time.Time  `json:"clock_in"`
	ClockOut     *time.Time `json:"clock_out,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ClockRequest is the body of a clock-in/out call.
type ClockRequest struct {
	StaffID      string `json:"staff_id"`
	RestaurantID string `json:"restaurant_id"`
	Action       string `json:"action"`
	Notes        string `json:"notes,omitempty"`
}
