package domain

import "fmt"

// Flight is immutable reference data; nothing in this service ever writes it.
type Flight struct {
	FID      int64
	Day      int
	Carrier  string
	Number   string
	Origin   string
	Dest     string
	Duration int
	Capacity int
	Price    int
	Canceled bool
}

// String renders the single-line flight description used by every caller-facing
// listing. The exact wording is an interop contract.
func (f Flight) String() string {
	return fmt.Sprintf("ID: %d Day: %d Carrier: %s Number: %s Origin: %s Dest: %s Duration: %d Capacity: %d Price: %d",
		f.FID, f.Day, f.Carrier, f.Number, f.Origin, f.Dest, f.Duration, f.Capacity, f.Price)
}
