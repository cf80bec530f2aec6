package pwatcher

// Journaler describes an event logger.
type Journaler interface {
	Write(Event) error
}

type nopJournaler struct{}

func (nopJournaler) Write(Event) error { return nil }

// journalerOrNop returns a Journaler that discards events if j is nil.
func journalerOrNop(j Journaler) Journaler {
	if j == nil {
		return nopJournaler{}
	}
	return j
}
