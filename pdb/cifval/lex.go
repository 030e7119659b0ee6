package cifval

// Lexical checks for CIF numbers. A number may carry a standard
// uncertainty in brackets, as in 1.234(5). We only look at ascii.

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// stripSU removes a trailing standard uncertainty, "12.3(4)" -> "12.3".
// ok is false if there is a bracket, but it is not a proper one.
func stripSU(s string) (num string, ok bool) {
	n := len(s)
	if n == 0 || s[n-1] != ')' {
		return s, true
	}
	i := n - 2
	for ; i >= 0 && isDigit(s[i]); i-- {
	}
	if i < 1 || s[i] != '(' || i == n-2 {
		return s, false
	}
	return s[:i], true
}

// skipSign jumps over a leading + or -
func skipSign(s string) string {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		return s[1:]
	}
	return s
}

// isInt is true for an optional sign followed by at least one digit and
// nothing else.
func isInt(s string) bool {
	s = skipSign(s)
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// isFloat accepts 1.5 1. .5 1e3 1.5E-3 with optional sign. There has to be
// at least one digit in the mantissa and a point or an exponent, or it
// would be an integer.
func isFloat(s string) bool {
	s = skipSign(s)
	i, nDigit, point := 0, 0, false
	for ; i < len(s) && isDigit(s[i]); i++ {
		nDigit++
	}
	if i < len(s) && s[i] == '.' {
		point = true
		for i++; i < len(s) && isDigit(s[i]); i++ {
			nDigit++
		}
	}
	if nDigit == 0 {
		return false
	}
	if i == len(s) {
		return point
	}
	if s[i] != 'e' && s[i] != 'E' {
		return false
	}
	i++
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for ; i < len(s) && isDigit(s[i]); i++ {
	}
	return i == len(s) && i > start
}
