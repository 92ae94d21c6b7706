package ledger

import (
	"bytes"
	"sort"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
)

// Warning is a non-fatal integrity diagnostic attached to a ledger or a
// returnable line. Warnings report; they never mutate stored data.
type Warning struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Row is one transaction in the ledger view.
type Row struct {
	TransactionID id.ID            `json:"transactionId"`
	Code          string           `json:"code"`
	Date          time.Time        `json:"date"`
	Kind          transaction.Kind `json:"kind"`
	Display       DisplayKind      `json:"display"`
	Flagged       bool             `json:"flagged,omitempty"`

	Debt    types.Money `json:"debt"`
	Credit  types.Money `json:"credit"`
	Running types.Money `json:"running"`
}

// Ledger is the computed per-customer view: every transaction with its debt,
// credit and the balance running after it, plus grand totals and integrity
// diagnostics.
type Ledger struct {
	Rows []Row `json:"rows"`

	TotalDebt   types.Money `json:"totalDebt"`
	TotalCredit types.Money `json:"totalCredit"`

	// Net = totalDebt − totalCredit, the recomputed closing balance.
	Net types.Money `json:"net"`

	// StoredBalance is the authoritative balance carried on the customer.
	// When it disagrees with Net the ledger reports the mismatch; it never
	// rewrites either value.
	StoredBalance types.Money `json:"storedBalance"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// HasMismatch reports whether the recomputed balance disagrees with the
// stored one at amount precision.
func (l *Ledger) HasMismatch() bool {
	for _, w := range l.Warnings {
		if w.Code == apperror.CodeBalanceMismatch {
			return true
		}
	}
	return false
}

// ComputeLedger builds the ledger view from a customer's transactions and
// their stored balance. Input order does not matter: rows are sorted by
// business date with the document ID as tie-break (IDs are time-ordered, so
// same-day documents keep creation order).
func ComputeLedger(txns []*transaction.Transaction, storedBalance types.Money) *Ledger {
	sorted := make([]*transaction.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.DeletionMark {
			continue
		}
		sorted = append(sorted, t)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return bytes.Compare(sorted[i].ID[:], sorted[j].ID[:]) < 0
	})

	led := &Ledger{
		Rows:          make([]Row, 0, len(sorted)),
		TotalDebt:     types.Zero(),
		TotalCredit:   types.Zero(),
		Net:           types.Zero(),
		StoredBalance: storedBalance,
	}

	running := types.Zero()
	for _, t := range sorted {
		e := Classify(t)
		running = running.Add(e.Net())

		led.Rows = append(led.Rows, Row{
			TransactionID: t.ID,
			Code:          t.Code,
			Date:          t.Date,
			Kind:          t.Kind,
			Display:       e.Display,
			Flagged:       e.Flagged,
			Debt:          e.Debt,
			Credit:        e.Credit,
			Running:       running,
		})

		led.TotalDebt = led.TotalDebt.Add(e.Debt)
		led.TotalCredit = led.TotalCredit.Add(e.Credit)
	}
	led.Net = led.TotalDebt.Sub(led.TotalCredit)

	if !types.SameAmount(led.Net, storedBalance) {
		led.Warnings = append(led.Warnings, Warning{
			Code:    apperror.CodeBalanceMismatch,
			Message: "recomputed balance disagrees with the stored balance",
			Details: map[string]any{
				"recomputed": types.RoundMoney(led.Net).String(),
				"stored":     types.RoundMoney(storedBalance).String(),
				"delta":      types.RoundMoney(led.Net.Sub(storedBalance)).String(),
			},
		})
	}

	return led
}
