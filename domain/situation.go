package domain

// Situation is an opaque transit-disruption record. Payload is the PtSituationElement XML exactly as
// received or published; it is stored and forwarded, never interpreted.
type Situation struct {
	ID      string // SituationNumber
	Payload string
}
