package domain

import "time"

// Vehicle represents a vehicle registered by a driver.
// A vehicle is ready for work only when it is both approved and active.
type Vehicle struct {
	ID        string
	DriverID  string
	Class     string
	Plate     string
	Model     string
	Approved  bool
	Active    bool
	CreatedAt time.Time
}

// Ready reports whether the vehicle can be used for trips.
func (v *Vehicle) Ready() bool {
	return v.Approved && v.Active
}
