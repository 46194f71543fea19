package html

import "fmt"

// Attribute is one rendered HTML attribute. An empty Value renders the bare
// key.
type Attribute struct {
	Key   string
	Value string
}

// Attrs is shorthand for building an attribute list from key/value pairs.
func Attrs(pairs ...string) []Attribute {
	if len(pairs)%2 != 0 {
		panic("html: Attrs needs key/value pairs")
	}
	out := make([]Attribute, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Attribute{Key: pairs[i], Value: pairs[i+1]})
	}
	return out
}

// ParseAttributes reads raw attribute text as written in markup: whitespace
// separated keys, each with an optional quoted or bare value.
func ParseAttributes(s string) ([]Attribute, error) {
	var attrs []Attribute
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		keyStart := i
		for i < len(s) && !isSpace(s[i]) && s[i] != '=' {
			i++
		}
		key := s[keyStart:i]
		if key == "" {
			return nil, fmt.Errorf("attribute without a name in %q", s)
		}
		if i >= len(s) || s[i] != '=' {
			attrs = append(attrs, Attribute{Key: key})
			continue
		}
		i++
		if i < len(s) && (s[i] == '"' || s[i] == '\'') {
			quote := s[i]
			i++
			valStart := i
			for i < len(s) && s[i] != quote {
				i++
			}
			if i >= len(s) {
				return nil, fmt.Errorf("unterminated %c-quoted value in %q", quote, s)
			}
			attrs = append(attrs, Attribute{Key: key, Value: s[valStart:i]})
			i++
			continue
		}
		valStart := i
		for i < len(s) && !isSpace(s[i]) {
			i++
		}
		attrs = append(attrs, Attribute{Key: key, Value: s[valStart:i]})
	}
	return attrs, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
