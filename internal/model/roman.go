package model

import "strconv"

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman converts a positive integer to an uppercase Roman numeral.
// Values outside 1..3999 fall back to the decimal representation.
func Roman(n int) string {
	if n <= 0 || n > 3999 {
		return strconv.Itoa(n)
	}
	var out []byte
	for _, e := range romanTable {
		for n >= e.value {
			out = append(out, e.symbol...)
			n -= e.value
		}
	}
	return string(out)
}

var cnDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// ParseChineseNumber converts a Chinese numeral (一, 十二, 二十一, 百级
// values) or a plain decimal string to an integer. Returns 0 when the
// text is not a recognizable number.
func ParseChineseNumber(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	total, current := 0, 0
	for _, r := range s {
		switch r {
		case '十':
			if current == 0 {
				current = 1
			}
			total += current * 10
			current = 0
		case '百':
			if current == 0 {
				current = 1
			}
			total += current * 100
			current = 0
		default:
			d, ok := cnDigits[r]
			if !ok {
				return 0
			}
			current = d
		}
	}
	return total + current
}
