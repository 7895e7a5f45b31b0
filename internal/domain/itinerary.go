package domain

// Itinerary is a ranked search result: either a single direct flight or a
// same-day connecting pair. The variant is sealed so booking code can branch
// exhaustively instead of probing a nullable second leg.
type Itinerary interface {
	Legs() []Flight
	First() Flight
	Duration() int

	itinerary()
}

type Direct struct {
	Leg Flight
}

func (d Direct) Legs() []Flight { return []Flight{d.Leg} }
func (d Direct) First() Flight  { return d.Leg }
func (d Direct) Duration() int  { return d.Leg.Duration }
func (Direct) itinerary()       {}

// Connecting is two flights where the first leg's destination is the second
// leg's origin and both fall on the same day of month.
type Connecting struct {
	Out  Flight
	Next Flight
}

func (c Connecting) Legs() []Flight { return []Flight{c.Out, c.Next} }
func (c Connecting) First() Flight  { return c.Out }
func (c Connecting) Duration() int  { return c.Out.Duration + c.Next.Duration }
func (Connecting) itinerary()       {}

// Less orders itineraries by total duration, then first-leg fid, then
// second-leg fid. Duration ties are common, so the fid tiebreaks keep result
// ranking independent of storage iteration order.
func Less(a, b Itinerary) bool {
	if a.Duration() != b.Duration() {
		return a.Duration() < b.Duration()
	}
	if a.First().FID != b.First().FID {
		return a.First().FID < b.First().FID
	}
	return secondFID(a) < secondFID(b)
}

func secondFID(it Itinerary) int64 {
	if c, ok := it.(Connecting); ok {
		return c.Next.FID
	}
	return 0
}
