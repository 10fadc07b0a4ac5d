package schema

import (
	"fmt"
	"strings"
)

// ParseTupleFieldName splits a stringified Python tuple such as ('a', 'b') into
// its elements. Quoted elements may use either quote character and backslash
// escapes; unquoted elements (numbers, None) are kept verbatim.
func ParseTupleFieldName(name string) ([]string, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("field name %q is not a tuple", name)
	}
	s = s[1 : len(s)-1]

	var (
		parts   []string
		current strings.Builder
		quote   byte
		quoted  bool
		escaped bool
	)
	flush := func() {
		token := current.String()
		if !quoted {
			token = strings.TrimSpace(token)
		}
		parts = append(parts, token)
		current.Reset()
		quoted = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			current.WriteByte(c)
			escaped = false
		case quote != 0 && c == '\\':
			escaped = true
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			current.WriteByte(c)
		case c == '\'' || c == '"':
			quote = c
			quoted = true
			current.Reset()
		case c == ',':
			flush()
		case c == ' ' && quoted:
			// whitespace between a closing quote and the next comma
		default:
			current.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("field name %q has an unterminated quote", name)
	}

	// A trailing comma marks a one-element tuple: ('a',)
	if current.Len() > 0 || quoted || len(parts) == 0 {
		flush()
	}
	return parts, nil
}

// HeaderLevels unzips the raw field names into per-level header rows. With a
// single level every field name is its own header; with more, every field name
// is parsed as a tuple and short tuples are padded with empty strings.
func HeaderLevels(fields []string, levels int) ([][]string, error) {
	if len(fields) == 0 {
		return [][]string{}, nil
	}
	if levels <= 1 {
		return [][]string{append([]string(nil), fields...)}, nil
	}

	out := make([][]string, levels)
	for l := range out {
		out[l] = make([]string, len(fields))
	}
	for c, field := range fields {
		parts, err := ParseTupleFieldName(field)
		if err != nil {
			return nil, err
		}
		for l := 0; l < levels && l < len(parts); l++ {
			out[l][c] = parts[l]
		}
	}
	return out, nil
}
