package loader

import (
	"fmt"
	"strings"
)

// Descriptor parsing: the erased grammar `BCDFIJSZV`, `L<binary>;` and
// `[`. Class references become single-segment sigClass values so the
// conversion path is shared with signatures.

func descClass(internal string) sigClass {
	parts := strings.Split(internal, "/")
	last := parts[len(parts)-1]
	return sigClass{
		pkg:      parts[:len(parts)-1],
		segments: []sigSegment{{name: last}},
	}
}

func parseDescType(src string, pos *int) (sigType, error) {
	if *pos >= len(src) {
		return nil, fmt.Errorf("descriptor %q at %d: unexpected end", src, *pos)
	}
	c := src[*pos]
	if k, ok := primFor(c); ok {
		*pos++
		return sigPrim{kind: k}, nil
	}
	switch c {
	case 'L':
		end := strings.IndexByte(src[*pos:], ';')
		if end < 0 {
			return nil, fmt.Errorf("descriptor %q at %d: unterminated class reference", src, *pos)
		}
		internal := src[*pos+1 : *pos+end]
		*pos += end + 1
		if internal == "" {
			return nil, fmt.Errorf("descriptor %q: empty class reference", src)
		}
		return descClass(internal), nil
	case '[':
		*pos++
		elem, err := parseDescType(src, pos)
		if err != nil {
			return nil, err
		}
		return sigArray{elem: elem}, nil
	}
	return nil, fmt.Errorf("descriptor %q at %d: unexpected %q", src, *pos, string(c))
}

// parseFieldDescriptor parses one field descriptor.
func parseFieldDescriptor(desc string) (sigType, error) {
	pos := 0
	t, err := parseDescType(desc, &pos)
	if err != nil {
		return nil, err
	}
	if pos != len(desc) {
		return nil, fmt.Errorf("descriptor %q: trailing input at %d", desc, pos)
	}
	return t, nil
}

// parseMethodDescriptor parses one method descriptor. A nil return type
// is void.
func parseMethodDescriptor(desc string) ([]sigType, sigType, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, nil, fmt.Errorf("descriptor %q: expected (", desc)
	}
	pos := 1
	var params []sigType
	for pos < len(desc) && desc[pos] != ')' {
		t, err := parseDescType(desc, &pos)
		if err != nil {
			return nil, nil, err
		}
		params = append(params, t)
	}
	if pos >= len(desc) {
		return nil, nil, fmt.Errorf("descriptor %q: unterminated parameter list", desc)
	}
	pos++
	if pos < len(desc) && desc[pos] == 'V' {
		if pos+1 != len(desc) {
			return nil, nil, fmt.Errorf("descriptor %q: trailing input", desc)
		}
		return params, nil, nil
	}
	ret, err := parseDescType(desc, &pos)
	if err != nil {
		return nil, nil, err
	}
	if pos != len(desc) {
		return nil, nil, fmt.Errorf("descriptor %q: trailing input at %d", desc, pos)
	}
	return params, ret, nil
}
