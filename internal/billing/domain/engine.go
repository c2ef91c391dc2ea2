package billing

import "time"

// Rate is the per-street price card. Streets without a configured rate bill
// as a zero Rate, which never produces an invoice.
type Rate struct {
	Street      string
	MinuteCents int64
	FineCents   int64
}

// IsZero reports whether the rate bills nothing.
func (r Rate) IsZero() bool { return r.MinuteCents == 0 && r.FineCents == 0 }

// BillSession prices a finished session: chargeable minutes times the street
// per-minute rate, in cents. It never persists anything.
func BillSession(start, end time.Time, rate Rate, schedule Schedule) (int64, error) {
	minutes, err := ChargeableMinutes(start, end, schedule)
	if err != nil {
		return 0, err
	}
	return minutes * rate.MinuteCents, nil
}

// BillObservation prices an uncovered observation: the street's flat fine.
func BillObservation(rate Rate) int64 { return rate.FineCents }
