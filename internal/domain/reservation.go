package domain

// User identity is case-insensitive; usernames are lowercased at the boundary
// and stored lowercased.
type User struct {
	Username     string
	PasswordHash []byte
	Balance      int
}

// Reservation ids are assigned monotonically across all users. SecondFID is
// zero for direct itineraries.
type Reservation struct {
	ID        int64
	Username  string
	FirstFID  int64
	SecondFID int64
	Paid      bool
}

func (r Reservation) HasSecondLeg() bool { return r.SecondFID != 0 }

// ReservationDetail is a reservation joined with its legs' full flight data,
// as returned to the owning user.
type ReservationDetail struct {
	ID   int64
	Paid bool
	Legs []Flight
}
