package engine

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/types"
)

// literalType parses a literal's raw text, records its constant value, and
// returns its type. negated is set when a minus sign parses together with
// an int or long literal, which admits the MIN_VALUE spellings.
func (c *checker) literalType(id hir.ExprID, e *hir.LiteralExpr, negated bool) (types.Type, error) {
	switch e.Kind {
	case hir.LitInt:
		return c.intLiteral(id, e.Text, false, negated), nil
	case hir.LitLong:
		return c.intLiteral(id, e.Text, true, negated), nil
	case hir.LitFloat:
		return c.floatLiteral(id, e.Text, true), nil
	case hir.LitDouble:
		return c.floatLiteral(id, e.Text, false), nil
	case hir.LitChar:
		return c.charLiteral(id, e.Text), nil
	case hir.LitString:
		return c.plainString(id, e.Text), nil
	case hir.LitTextBlock:
		return c.textBlock(id, e.Text), nil
	case hir.LitBool:
		switch e.Text {
		case "true":
			c.setConst(id, types.BoolConst(true))
		case "false":
			c.setConst(id, types.BoolConst(false))
		default:
			c.exprErr("invalid-literal", id, "malformed boolean literal `%s`", e.Text)
		}
		return types.Boolean, nil
	}
	c.exprErr("invalid-literal", id, "unknown literal kind `%s`", e.Kind)
	return types.Error, nil
}

func (c *checker) setConst(id hir.ExprID, v types.ConstValue) {
	c.exprConsts[id] = &v
}

// intLiteral handles both int and long literals in all four radixes. The
// type is fixed by the literal kind; only the constant and the range
// diagnostics depend on the spelling.
func (c *checker) intLiteral(id hir.ExprID, text string, asLong, negated bool) types.Type {
	result := types.Int
	if asLong {
		result = types.Long
	}
	digits := strings.ReplaceAll(text, "_", "")
	if asLong {
		if n := len(digits); n > 0 && (digits[n-1] == 'l' || digits[n-1] == 'L') {
			digits = digits[:n-1]
		}
	}

	radix := 10
	switch {
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		radix, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0b"), strings.HasPrefix(digits, "0B"):
		radix, digits = 2, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		radix, digits = 8, digits[1:]
	}

	v, err := strconv.ParseUint(digits, radix, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			c.exprErr("literal-out-of-range", id, "integer literal `%s` is out of range", text)
		} else {
			c.exprErr("invalid-literal", id, "malformed integer literal `%s`", text)
		}
		return result
	}

	if asLong {
		if radix == 10 {
			limit := uint64(math.MaxInt64)
			if negated {
				limit++
			}
			if v > limit {
				c.exprErr("literal-out-of-range", id, "integer literal `%s` is out of range for `long`", text)
				return result
			}
		}
		lv := int64(v)
		if negated {
			lv = -lv
		}
		c.setConst(id, types.LongConst(lv))
		return result
	}

	if radix == 10 {
		limit := uint64(math.MaxInt32)
		if negated {
			limit++
		}
		if v > limit {
			c.exprErr("literal-out-of-range", id, "integer literal `%s` is out of range for `int`", text)
			return result
		}
	} else if v > math.MaxUint32 {
		c.exprErr("literal-out-of-range", id, "integer literal `%s` is out of range for `int`", text)
		return result
	}
	iv := int32(uint32(v))
	if negated {
		iv = -iv
	}
	c.setConst(id, types.IntConst(iv))
	return result
}

// floatLiteral handles float and double literals, including hex floats.
// A nonzero literal that rounds to zero or to infinity is an error.
func (c *checker) floatLiteral(id hir.ExprID, text string, single bool) types.Type {
	result := types.Double
	if single {
		result = types.Float
	}
	s := strings.ReplaceAll(text, "_", "")
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'f', 'F':
			if single {
				s = s[:n-1]
			}
		case 'd', 'D':
			if !single {
				s = s[:n-1]
			}
		}
	}

	bits := 64
	if single {
		bits = 32
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			if math.IsInf(v, 0) {
				c.exprErr("literal-out-of-range", id, "floating-point literal `%s` is too large", text)
			} else {
				c.exprErr("literal-out-of-range", id, "floating-point literal `%s` rounds to zero", text)
			}
		} else {
			c.exprErr("invalid-literal", id, "malformed floating-point literal `%s`", text)
		}
		return result
	}
	if math.IsInf(v, 0) {
		c.exprErr("literal-out-of-range", id, "floating-point literal `%s` is too large", text)
		return result
	}
	// ParseFloat underflows to zero silently; a written zero has no
	// significant mantissa digit, an underflowed one does.
	if v == 0 && hasNonzeroMantissa(s) {
		c.exprErr("literal-out-of-range", id, "floating-point literal `%s` rounds to zero", text)
		return result
	}
	if single {
		c.setConst(id, types.FloatConst(v))
	} else {
		c.setConst(id, types.DoubleConst(v))
	}
	return result
}

func (c *checker) charLiteral(id hir.ExprID, text string) types.Type {
	bad := func() types.Type {
		c.exprErr("invalid-literal", id, "malformed character literal %s", text)
		return types.Char
	}
	if len(text) < 3 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return bad()
	}
	inner := text[1 : len(text)-1]
	r, rest, ok := decodeEscape(inner)
	if !ok || rest != "" {
		return bad()
	}
	if r > 0xFFFF {
		c.exprErr("invalid-literal", id, "character literal %s does not fit in one `char`", text)
		return types.Char
	}
	c.setConst(id, types.CharConst(r))
	return types.Char
}

func (c *checker) plainString(id hir.ExprID, text string) types.Type {
	result := c.strType()
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		c.exprErr("invalid-literal", id, "malformed string literal")
		return result
	}
	val, ok := unescape(text[1:len(text)-1], false)
	if !ok {
		c.exprErr("invalid-literal", id, "malformed string literal")
		return result
	}
	c.setConst(id, types.StringConst(val))
	return result
}

// textBlock strips incidental white space from a `"""` literal and then
// translates escapes, matching the documented two-phase treatment.
func (c *checker) textBlock(id hir.ExprID, text string) types.Type {
	result := c.strType()
	if len(text) < 6 || !strings.HasPrefix(text, `"""`) || !strings.HasSuffix(text, `"""`) {
		c.exprErr("invalid-literal", id, "malformed text block")
		return result
	}
	raw := text[3 : len(text)-3]
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	nl := strings.IndexByte(raw, '\n')
	if nl < 0 || strings.TrimSpace(raw[:nl]) != "" {
		c.exprErr("invalid-literal", id, "text block must begin with a line terminator")
		return result
	}
	lines := strings.Split(raw[nl+1:], "\n")
	last := len(lines) - 1
	closingOwnLine := strings.TrimSpace(lines[last]) == ""

	// The closing delimiter's own indentation participates even when its
	// line is otherwise blank.
	minIndent := -1
	for i, ln := range lines {
		if strings.TrimSpace(ln) == "" && i != last {
			continue
		}
		ind := leadingSpace(ln)
		if minIndent < 0 || ind < minIndent {
			minIndent = ind
		}
	}
	if minIndent < 0 {
		minIndent = 0
	}
	for i, ln := range lines {
		if n := leadingSpace(ln); n < minIndent {
			ln = ln[n:]
		} else {
			ln = ln[minIndent:]
		}
		lines[i] = strings.TrimRight(ln, " \t")
	}

	// A closing delimiter on its own line terminates the last content
	// line; a delimiter on a content line leaves it unterminated.
	var joined string
	if closingOwnLine {
		var b strings.Builder
		for _, ln := range lines[:last] {
			b.WriteString(ln)
			b.WriteByte('\n')
		}
		joined = b.String()
	} else {
		joined = strings.Join(lines, "\n")
	}

	val, ok := unescape(joined, true)
	if !ok {
		c.exprErr("invalid-literal", id, "malformed escape in text block")
		return result
	}
	c.setConst(id, types.StringConst(val))
	return result
}

func hasNonzeroMantissa(s string) bool {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		mant := s[2:]
		if i := strings.IndexAny(mant, "pP"); i >= 0 {
			mant = mant[:i]
		}
		return strings.ContainsAny(mant, "123456789abcdefABCDEF")
	}
	mant := s
	if i := strings.IndexAny(mant, "eE"); i >= 0 {
		mant = mant[:i]
	}
	return strings.ContainsAny(mant, "123456789")
}

func leadingSpace(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

// unescape translates escape sequences. textBlock additionally admits
// raw line terminators and the line-continuation escape, a backslash
// before a line terminator.
func unescape(s string, textBlock bool) (string, bool) {
	var b strings.Builder
	for len(s) > 0 {
		if textBlock {
			if len(s) >= 2 && s[0] == '\\' && s[1] == '\n' {
				s = s[2:]
				continue
			}
			if s[0] == '\n' {
				b.WriteByte('\n')
				s = s[1:]
				continue
			}
		}
		r, rest, ok := decodeEscape(s)
		if !ok {
			return "", false
		}
		b.WriteRune(r)
		s = rest
	}
	return b.String(), true
}

// decodeEscape consumes one character, escaped or raw, and returns it with
// the remaining input. Raw line terminators never appear inside a literal.
func decodeEscape(s string) (rune, string, bool) {
	if s == "" {
		return 0, "", false
	}
	if s[0] != '\\' {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			return 0, "", false
		}
		if r == '\n' || r == '\r' {
			return 0, "", false
		}
		return r, s[size:], true
	}
	if len(s) < 2 {
		return 0, "", false
	}
	switch s[1] {
	case 'b':
		return '\b', s[2:], true
	case 't':
		return '\t', s[2:], true
	case 'n':
		return '\n', s[2:], true
	case 'f':
		return '\f', s[2:], true
	case 'r':
		return '\r', s[2:], true
	case 's':
		return ' ', s[2:], true
	case '\'':
		return '\'', s[2:], true
	case '"':
		return '"', s[2:], true
	case '\\':
		return '\\', s[2:], true
	case 'u':
		rest := s[1:]
		for len(rest) > 0 && rest[0] == 'u' {
			rest = rest[1:]
		}
		if len(rest) < 4 {
			return 0, "", false
		}
		v, err := strconv.ParseUint(rest[:4], 16, 32)
		if err != nil {
			return 0, "", false
		}
		return rune(v), rest[4:], true
	case '0', '1', '2', '3', '4', '5', '6', '7':
		// Up to three octal digits; three only when the first is 0-3.
		limit := 2
		if s[1] <= '3' {
			limit = 3
		}
		v := 0
		i := 1
		for i-1 < limit && i < len(s) && s[i] >= '0' && s[i] <= '7' {
			v = v*8 + int(s[i]-'0')
			i++
		}
		return rune(v), s[i:], true
	}
	return 0, "", false
}
