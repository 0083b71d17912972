// Package fx converts monetary amounts between currencies using a rate-table
// snapshot supplied by the external rate fetcher. Conversion never fails: a
// missing rate degrades to the identity conversion so that a stale or absent
// rate can never block a ledger mutation.
package fx

// PivotCurrency is the base currency used to bridge pairs that have no
// direct rate.
const PivotCurrency = "USD"

// RateTable maps source currency to target currency to a multiplicative rate.
type RateTable map[string]map[string]float64

// Rate returns the direct rate from one currency to another, if present.
func (t RateTable) Rate(from, to string) (float64, bool) {
	targets, ok := t[from]
	if !ok {
		return 0, false
	}
	rate, ok := targets[to]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

// Set records a direct rate in the table.
func (t RateTable) Set(from, to string, rate float64) {
	if t[from] == nil {
		t[from] = make(map[string]float64)
	}
	t[from][to] = rate
}

// Convert returns amount expressed in the target currency. Resolution order:
// identity when the currencies match, the direct rate, then a pivot through
// PivotCurrency. When no path exists the amount is returned unchanged.
func Convert(amount float64, from, to string, rates RateTable) float64 {
	if from == to || from == "" || to == "" {
		return amount
	}
	if rate, ok := rates.Rate(from, to); ok {
		return amount * rate
	}
	toPivot, ok := rates.Rate(from, PivotCurrency)
	if !ok {
		return amount
	}
	fromPivot, ok := rates.Rate(PivotCurrency, to)
	if !ok {
		return amount
	}
	return amount * toPivot * fromPivot
}
