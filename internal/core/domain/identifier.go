package domain

import "strings"

// receiptWidth is the fixed receipt width used by the insurer report.
const receiptWidth = 9

// NormalizePolicy returns the canonical form of a policy number.
//
// Integer input loses its sign "+" and leading zeros ("023178309" and
// "0023178309" both become "23178309"). Integer-valued spreadsheet numbers
// such as "23178309.0" are treated as integers. Anything else is returned
// trimmed but otherwise unchanged. The function never fails and is idempotent.
func NormalizePolicy(raw string) string {
	s := strings.TrimSpace(raw)
	digits, negative, ok := integerDigits(s)
	if !ok {
		return s
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0"
	}
	if negative {
		return "-" + digits
	}
	return digits
}

// NormalizeReceipt returns the canonical form of a receipt number: the
// policy-style zero stripping followed by keeping the last nine characters.
// The insurer always emits nine-digit receipts while the collections export
// sometimes prefixes extra digits, so truncation keeps the right-hand side.
// Values shorter than nine characters are preserved whole.
func NormalizeReceipt(raw string) string {
	s := NormalizePolicy(raw)
	runes := []rune(s)
	if len(runes) <= receiptWidth {
		return s
	}
	return string(runes[len(runes)-receiptWidth:])
}

// integerDigits splits s into its digit run and sign when s is an integer
// literal, optionally followed by a zero fraction ("12.00").
func integerDigits(s string) (digits string, negative bool, ok bool) {
	if s == "" {
		return "", false, false
	}

	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	if whole, frac, found := strings.Cut(s, "."); found {
		if frac == "" || strings.Trim(frac, "0") != "" {
			return "", false, false
		}
		s = whole
	}

	if s == "" {
		return "", false, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false, false
		}
	}
	return s, negative, true
}
