package engine

import (
	"math"
	"math/big"
	"math/bits"
)

// Number is a decoded numeric literal independent of its target type:
// value = (-1)^Negative * Digits * 10^(Exponent-PointPos).
type Number struct {
	Negative bool
	Digits   uint64
	// PointPos counts the digits after the decimal point.
	PointPos int
	Exponent int
}

// ReadNumber reads a JSON number. A number that runs into a clean end of
// the stream is complete, so a bare top-level number needs no terminator;
// one cut short by a failing source is an error.
func (p *Parser) ReadNumber() (Number, error) {
	var n Number
	c, ok := p.PeekSignificant()
	if !ok {
		return n, p.eof("expected number")
	}
	if c == '-' {
		n.Negative = true
		p.rem = p.rem[1:]
		if !p.ensure() {
			return n, p.eof("expected digit")
		}
		c = p.rem[0]
	}
	switch {
	case c == '0':
		p.rem = p.rem[1:]
		if p.ensure() && isDigit(p.rem[0]) {
			return n, p.fail(KindSyntax, "leading zeros are not allowed")
		}
	case isDigit(c):
		if _, err := p.readDigits(&n.Digits); err != nil {
			return n, err
		}
	case n.Negative:
		return n, p.fail(KindSyntax, "expected digit after '-', found %q", c)
	default:
		return n, p.unexpected(c, "number")
	}

	if p.ensure() && p.rem[0] == '.' {
		p.rem = p.rem[1:]
		cnt, err := p.readDigits(&n.Digits)
		if err != nil {
			return n, err
		}
		if cnt == 0 {
			return n, p.digitExpected("after decimal point")
		}
		n.PointPos = cnt
	}

	if p.ensure() && (p.rem[0] == 'e' || p.rem[0] == 'E') {
		p.rem = p.rem[1:]
		neg := false
		if p.ensure() {
			switch p.rem[0] {
			case '-':
				neg = true
				p.rem = p.rem[1:]
			case '+':
				p.rem = p.rem[1:]
			}
		}
		var e uint64
		cnt, err := p.readDigits(&e)
		if err != nil {
			return n, err
		}
		if cnt == 0 {
			return n, p.digitExpected("in exponent")
		}
		if e > uint64(p.maxExp) {
			return n, p.fail(KindRange, "exponent out of range")
		}
		n.Exponent = int(e)
		if neg {
			n.Exponent = -n.Exponent
		}
	}
	if len(p.rem) == 0 && p.srcErr != nil {
		return n, p.eof("number")
	}
	return n, nil
}

func (p *Parser) digitExpected(where string) error {
	if !p.ensure() {
		return p.eof("expected digit " + where)
	}
	return p.fail(KindSyntax, "expected digit %s, found %q", where, p.rem[0])
}

// readDigits accumulates decimal digits into *acc with checked arithmetic
// and returns how many it consumed.
func (p *Parser) readDigits(acc *uint64) (int, error) {
	count := 0
	v := *acc
	for p.ensure() {
		chunk := p.rem
		i := 0
		for ; i < len(chunk); i++ {
			d := chunk[i] - '0'
			if d > 9 {
				break
			}
			hi, lo := bits.Mul64(v, 10)
			sum, carry := bits.Add64(lo, uint64(d), 0)
			if hi != 0 || carry != 0 {
				p.rem = chunk[i:]
				return count, p.fail(KindRange, "number overflows 64 bits")
			}
			v = sum
			count++
		}
		p.rem = chunk[i:]
		if i < len(chunk) {
			break
		}
	}
	*acc = v
	return count, nil
}

var pow10 = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11,
	1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

// Float64 converts n, applying its exponent, rounded to nearest. ok is
// false when the result is not finite. Subnormal results may be off by one
// ulp.
func (n Number) Float64() (f float64, ok bool) {
	e := n.Exponent - n.PointPos
	switch {
	case n.Digits == 0:
		f = 0
	case n.Digits < 1<<53 && e >= -22 && e <= 22:
		// Both operands are exact, so one rounding.
		f = float64(n.Digits)
		if e < 0 {
			f /= pow10[-e]
		} else {
			f *= pow10[e]
		}
	default:
		f = exactFloat(n.Digits, e)
	}
	if n.Negative {
		f = -f
	}
	return f, !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Float32 converts n to single precision by way of Float64.
func (n Number) Float32() (float32, bool) {
	f, ok := n.Float64()
	if !ok || math.Abs(f) > math.MaxFloat32 {
		return 0, false
	}
	return float32(f), true
}

// exactFloat computes digits * 10^e with a single rounding to 53 bits.
func exactFloat(digits uint64, e int) float64 {
	// digits has at most 20 decimal places.
	switch {
	case e > 330:
		return math.Inf(1)
	case e < -350:
		return 0
	}
	m := new(big.Float).SetUint64(digits)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(e))), nil)
	z := new(big.Float).SetPrec(53)
	if e < 0 {
		z.Quo(m, new(big.Float).SetInt(scale))
	} else {
		z.Mul(m, new(big.Float).SetInt(scale))
	}
	f, _ := z.Float64()
	return f
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// IsInteger reports whether n has neither fraction nor exponent.
func (n Number) IsInteger() bool { return n.PointPos == 0 && n.Exponent == 0 }

// Uint checks n against an unsigned width and returns its magnitude.
func (n Number) Uint(bitWidth int) (uint64, bool) {
	limit := maxMagnitude(bitWidth, false)
	if n.Digits > limit || (n.Negative && n.Digits != 0) {
		return 0, false
	}
	return n.Digits, true
}

// Int checks n against a signed width. The negative side admits one more
// value than the positive side.
func (n Number) Int(bitWidth int) (int64, bool) {
	limit := maxMagnitude(bitWidth, true)
	if n.Negative {
		limit++
	}
	if n.Digits > limit {
		return 0, false
	}
	if n.Negative {
		return int64(-n.Digits), true
	}
	return int64(n.Digits), true
}

func maxMagnitude(bitWidth int, signed bool) uint64 {
	if bitWidth <= 0 || bitWidth > 64 {
		bitWidth = 64
	}
	if signed {
		bitWidth--
	}
	return uint64(math.MaxUint64) >> uint(64-bitWidth)
}
