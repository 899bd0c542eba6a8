package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Arrears is the result of the debt calculation for one client at a given
// instant. Pure data — no I/O behind it.
type Arrears struct {
	MonthsOwed int
	HasMora    bool
	// OwedMonths lists human-readable month names, one per owed month,
	// starting the month after the billing anchor.
	OwedMonths []string
	// MoraAmount is the effective late fee: the stored balance when
	// positive, else the flat configured fee when HasMora.
	MoraAmount decimal.Decimal
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// ComputeArrears calculates months owed and mora status for a client.
//
//   - monthsOwed: whole-month difference between the first-of-month of
//     lastPaidMonth and the first-of-month of now, floored at 0.
//   - hasMora: true above one owed month; at exactly one, only once today's
//     day-of-month passes cutoffDay; never at zero.
//
// Deterministic: "now" is a parameter, so tests pin it.
func ComputeArrears(lastPaidMonth time.Time, cutoffDay int, now time.Time, storedMora, moraFee decimal.Decimal) Arrears {
	monthsOwed := (now.Year()-lastPaidMonth.Year())*12 + int(now.Month()) - int(lastPaidMonth.Month())
	if monthsOwed < 0 {
		monthsOwed = 0
	}

	hasMora := false
	switch {
	case monthsOwed > 1:
		hasMora = true
	case monthsOwed == 1:
		hasMora = now.Day() > cutoffDay
	}

	owed := make([]string, 0, monthsOwed)
	anchor := time.Date(lastPaidMonth.Year(), lastPaidMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= monthsOwed; i++ {
		m := anchor.AddDate(0, i, 0)
		owed = append(owed, fmt.Sprintf("%s %d", monthNames[m.Month()-1], m.Year()))
	}

	mora := decimal.Zero
	if storedMora.IsPositive() {
		// The stored balance is authoritative history; it wins over the
		// flat fee whenever present.
		mora = storedMora
	} else if hasMora {
		mora = moraFee
	}

	return Arrears{
		MonthsOwed: monthsOwed,
		HasMora:    hasMora,
		OwedMonths: owed,
		MoraAmount: mora,
	}
}
