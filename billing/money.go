package billing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idrPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders whole rupiah the way the Indonesian locale does, e.g. 15000 -> "Rp 15.000".
func FormatIDR(amount int64) string {
	if amount < 0 {
		return "-Rp " + idrPrinter.Sprintf("%d", -amount)
	}
	return "Rp " + idrPrinter.Sprintf("%d", amount)
}
