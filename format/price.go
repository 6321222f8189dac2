// Package format renders prices the way the storefront displays them.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FreeLabel is shown for zero-priced games.
const FreeLabel = "Miễn phí"

var printer = message.NewPrinter(language.Vietnamese)

// VND formats a price in Vietnamese đồng: 0 becomes "Miễn phí",
// 1200000 becomes "1.200.000 đ".
func VND(price int64) string {
	if price == 0 {
		return FreeLabel
	}
	return printer.Sprintf("%d", price) + " đ"
}
