package helpers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatQuantity renders a trade or order quantity with thousand separators
// and 3 decimal places.
func FormatQuantity(quantity float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%.3f", quantity)
}

// FormatPrice renders a price or total value with thousand separators and
// 2 decimal places.
func FormatPrice(price float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%.2f", price)
}
