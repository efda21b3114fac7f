package portfolio

import "fmt"

// DefaultCurrency is the rupee sign.
const DefaultCurrency = "₹"

// FormatCurrency abbreviates amounts in the Indian numbering system:
// crore (1e7), lakh (1e5) and thousand.
func FormatCurrency(amount float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	switch {
	case amount >= 1e7:
		return fmt.Sprintf("%s%.2fCr", currency, amount/1e7)
	case amount >= 1e5:
		return fmt.Sprintf("%s%.2fL", currency, amount/1e5)
	case amount >= 1e3:
		return fmt.Sprintf("%s%.2fK", currency, amount/1e3)
	default:
		return fmt.Sprintf("%s%.2f", currency, amount)
	}
}

// FormatPercentage renders v with an explicit "+" for gains.
func FormatPercentage(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}
