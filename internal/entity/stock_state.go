package entity

import "time"

// StockState is the record persisted between runs. A nil field means the
// value has never been observed.
type StockState struct {
	LastAvailable      *bool      `json:"last_available"`
	LastStatusEmailUTC *time.Time `json:"last_status_email_utc"`
}

func NewStockState() *StockState {
	return &StockState{}
}

// WasAvailable reports whether the previous run saw the product in stock.
// An unset value counts as not available.
func (s *StockState) WasAvailable() bool {
	return s.LastAvailable != nil && *s.LastAvailable
}

// StatusEmailDue reports whether a periodic status email should go out at now.
func (s *StockState) StatusEmailDue(now time.Time, interval time.Duration) bool {
	if s.LastStatusEmailUTC == nil {
		return true
	}
	return now.Sub(*s.LastStatusEmailUTC) >= interval
}

func (s *StockState) SetAvailable(available bool) {
	s.LastAvailable = &available
}

func (s *StockState) MarkStatusEmailSent(now time.Time) {
	sent := now.UTC()
	s.LastStatusEmailUTC = &sent
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (s *StockState) Clone() *StockState {
	c := &StockState{}
	if s.LastAvailable != nil {
		v := *s.LastAvailable
		c.LastAvailable = &v
	}
	if s.LastStatusEmailUTC != nil {
		t := *s.LastStatusEmailUTC
		c.LastStatusEmailUTC = &t
	}
	return c
}

// LastAvailableString renders the previous availability as true, false or null.
func (s *StockState) LastAvailableString() string {
	if s.LastAvailable == nil {
		return "null"
	}
	if *s.LastAvailable {
		return "true"
	}
	return "false"
}
