package screen

import "fmt"

// FormatFixed renders the five low decimal digits of n as a signed fixed
// point value with three decimals. 53600 is " 53.600".
func FormatFixed(n int32) string {
	sign := ' '
	v := int64(n)
	if v < 0 {
		sign = '-'
		v = -v
	}
	d := fmt.Sprintf("%05d", v%100000)
	return fmt.Sprintf("%c%s.%s", sign, d[:2], d[2:])
}
