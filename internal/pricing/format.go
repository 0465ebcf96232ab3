package pricing

import (
	"fmt"
	"strconv"
)

// FormatBRL renders cents the way the storefront prints prices: 2980 -> "R$ 29,80".
// No thousands separator is used, so 123456 -> "R$ 1234,56".
func FormatBRL(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sR$ %d,%02d", sign, cents/100, cents%100)
}

// ItemCountLabel is the summary header: "1 item", "3 itens", "0 itens".
func ItemCountLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return strconv.Itoa(n) + " itens"
}
