// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

// maxExponent is the largest base-10 exponent this decoder will
// combine; anything larger has already overflowed or underflowed a
// float64, so there is no need to track further digits.
const maxExponent = 511

// powersOf10[i] == 10^(2^i), used to combine an arbitrary exponent by
// repeated squaring instead of a multiply-by-ten loop.
var powersOf10 = [...]float64{
	1e1, 1e2, 1e4, 1e8, 1e16, 1e32, 1e64, 1e128, 1e256,
}

// ParseNumber parses a JSON-conforming decimal number from the start
// of src and returns its value, the unconsumed suffix, and whether
// parsing succeeded.
//
// Grammar (a subset of RFC 7159 numbers):
//
//	number    = [ "-" ] int [ frac ] [ exp ]
//	int       = "0" / (digit1-9 *digit)
//	frac      = "." 1*digit
//	exp       = ("e" / "E") [ "-" / "+" ] 1*digit
//
// ParseNumber never allocates and is safe for concurrent reentrant
// use: it is a pure function of its input slice.
func ParseNumber(src []byte) (value float64, rest []byte, ok bool) {
	p := 0
	n := len(src)
	if p == n {
		return 0, nil, false
	}

	negative := false
	if src[p] == '-' {
		negative = true
		p++
	}
	if p == n {
		return 0, nil, false
	}

	var fraction float64

	if src[p] == '0' {
		p++
		if p < n && src[p] >= '0' && src[p] <= '9' {
			// a leading zero followed by another digit is invalid
			return 0, nil, false
		}
	} else {
		if src[p] < '1' || src[p] > '9' {
			return 0, nil, false
		}
		for p < n && src[p] >= '0' && src[p] <= '9' {
			fraction = 10*fraction + float64(src[p]-'0')
			p++
		}
	}

	fracExp := 0
	if p < n && src[p] == '.' {
		p++
		if p == n || src[p] < '0' || src[p] > '9' {
			// "1234." is invalid: a decimal point demands at least one
			// fractional digit
			return 0, nil, false
		}
		for p < n && src[p] >= '0' && src[p] <= '9' {
			fraction = 10*fraction + float64(src[p]-'0')
			fracExp--
			p++
		}
	}

	exp := 0
	if p < n && (src[p] == 'e' || src[p] == 'E') {
		p++
		expNegative := false
		if p < n && (src[p] == '-' || src[p] == '+') {
			expNegative = src[p] == '-'
			p++
		}
		if p == n || src[p] < '0' || src[p] > '9' {
			return 0, nil, false
		}
		for p < n && src[p] >= '0' && src[p] <= '9' {
			exp = exp*10 + int(src[p]-'0')
			p++
		}
		if expNegative {
			exp = -exp
		}
	}

	combined := fracExp + exp
	expNegative := combined < 0
	if expNegative {
		combined = -combined
	}
	if combined > maxExponent {
		return 0, nil, false
	}

	dblExp := 1.0
	for i := 0; combined != 0; combined, i = combined>>1, i+1 {
		if combined&1 != 0 {
			dblExp *= powersOf10[i]
		}
	}
	if expNegative {
		fraction /= dblExp
	} else {
		fraction *= dblExp
	}

	if negative {
		fraction = -fraction
	}

	return fraction, src[p:], true
}
