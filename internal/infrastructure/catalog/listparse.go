package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errMalformedList = errors.New("malformed list literal")

// parseList turns a textual list field into its elements.
// Values that are not a list literal become a single-element list.
func parseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	items, err := parseListLiteral(raw)
	if err == nil {
		return items
	}

	if s, ok := unquoteLiteral(strings.TrimSpace(raw)); ok {
		return []string{s}
	}
	return []string{raw}
}

// parseListLiteral parses a Python-style list literal such as ['a', "b", 3].
// Nested containers are not supported and are reported as malformed.
func parseListLiteral(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: not bracketed", errMalformedList)
	}
	body := s[1 : len(s)-1]

	var items []string
	i := 0
	for {
		i = skipSpace(body, i)
		if i >= len(body) {
			break
		}

		var (
			item string
			keep bool
			err  error
		)
		switch body[i] {
		case '\'', '"':
			item, i, err = readQuoted(body, i)
			keep = true
		default:
			item, keep, i, err = readBare(body, i)
		}
		if err != nil {
			return nil, err
		}
		if keep {
			items = append(items, item)
		}

		i = skipSpace(body, i)
		if i >= len(body) {
			break
		}
		if body[i] != ',' {
			return nil, fmt.Errorf("%w: expected ',' at offset %d", errMalformedList, i)
		}
		i++
	}

	return items, nil
}

// unquoteLiteral unwraps a single quoted string literal
func unquoteLiteral(s string) (string, bool) {
	if len(s) < 2 || (s[0] != '\'' && s[0] != '"') {
		return "", false
	}
	value, end, err := readQuoted(s, 0)
	if err != nil || end != len(s) {
		return "", false
	}
	return value, true
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

// readQuoted reads a quoted literal starting at s[start] and returns the
// unescaped value and the offset just past the closing quote.
func readQuoted(s string, start int) (string, int, error) {
	quote := s[start]
	var b strings.Builder
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '\'', '"':
				b.WriteByte(s[i])
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
		case c == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string at offset %d", errMalformedList, start)
}

// readBare reads an unquoted element. Only numbers, booleans and None are
// literals; None is dropped.
func readBare(s string, start int) (string, bool, int, error) {
	end := start
	for end < len(s) && s[end] != ',' {
		end++
	}
	token := strings.TrimSpace(s[start:end])

	switch token {
	case "":
		return "", false, 0, fmt.Errorf("%w: empty element at offset %d", errMalformedList, start)
	case "None":
		return "", false, end, nil
	case "True", "False":
		return token, true, end, nil
	}

	if _, err := strconv.ParseFloat(token, 64); err != nil {
		return "", false, 0, fmt.Errorf("%w: unsupported element %q", errMalformedList, token)
	}
	return token, true, end, nil
}
