package transaction

import "tillbook/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Transaction codes are the join key for returns, so gaps are acceptable
	// but reuse is not: Strict strategy.
	NumeratorStrategy = numerator.StrategyStrict
)

// Numerator prefixes per transaction kind. Codes look like "SL-2026-00042".
func NumeratorPrefix(kind Kind) string {
	switch kind {
	case KindCashSale, KindCardSale, KindCreditSale:
		return "SL"
	case KindPayment:
		return "PM"
	case KindManualDebit:
		return "DB"
	case KindReturn:
		return "RT"
	default:
		return "TX"
	}
}
