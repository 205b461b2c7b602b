package option

import (
	"strings"

	"github.com/assemble-build/assemble/pkg/apperr"
)

// Values holds the parsed result of slurping one task's option tail: each
// flag name maps to one or more parsed values (len > 1 only when the
// declaration allows multiple values and the flag repeated).
type Values map[string][]any

// Get returns the first value recorded for name, if any.
func (v Values) Get(name string) (any, bool) {
	vals, ok := v[name]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// All returns every value recorded for name, in the order they were given.
func (v Values) All(name string) []any {
	return v[name]
}

// isFlag reports whether tok looks like a flag token ("--name" or
// "--name=value") rather than the next task's positional name.
func isFlag(tok string) bool {
	return strings.HasPrefix(tok, "--") && len(tok) > 2
}

// Slurp consumes tokens against decls starting at the front, honoring:
//   - "--flag" with TakesValue == false, stored with value true
//   - "--flag value" or "--flag=value" with TakesValue == true
//   - a repeated flag accumulating into Values[flag] when
//     AllowMultipleValues is set; otherwise the later value overwrites
//
// Slurping stops at the first token that doesn't look like a flag (the
// caller treats it as the next requested task name), or at end of input.
// It returns the number of tokens consumed and the parsed values.
func Slurp(decls *Declarations, tokens []string) (int, Values, error) {
	values := make(Values)
	consumed := 0

	for consumed < len(tokens) {
		tok := tokens[consumed]
		if !isFlag(tok) {
			break
		}

		name := strings.TrimPrefix(tok, "--")
		inlineValue, hasInline := "", false
		if idx := strings.Index(name, "="); idx >= 0 {
			inlineValue, hasInline = name[idx+1:], true
			name = name[:idx]
		}

		decl, ok := decls.Lookup(name)
		if !ok {
			return 0, nil, apperr.UnknownOption(name)
		}

		consumed++
		if !decl.TakesValue {
			if hasInline {
				return 0, nil, apperr.OptionDoesNotTakeValue(name)
			}
			values[name] = append(values[name], true)
			continue
		}

		var raw string
		switch {
		case hasInline:
			raw = inlineValue
		case consumed < len(tokens):
			raw = tokens[consumed]
			consumed++
		default:
			return 0, nil, apperr.OptionTakesValueButNoneProvided(name)
		}

		parsed, err := parseValue(decl, raw)
		if err != nil {
			return 0, nil, err
		}

		if decl.AllowMultipleValues {
			values[name] = append(values[name], parsed)
		} else {
			values[name] = []any{parsed}
		}
	}

	if err := checkRequired(decls, values); err != nil {
		return 0, nil, err
	}
	return consumed, values, nil
}

func parseValue(decl Declaration, raw string) (any, error) {
	if decl.Parser == nil {
		return raw, nil
	}
	return decl.Parser(raw)
}

// checkRequired reports a non-optional declaration left unset once slurping
// stops, reusing the same "reading an unset value" error as a Property's
// fallible_get on Unset (spec.md §7) rather than inventing a fourth option
// error kind the spec doesn't name.
func checkRequired(decls *Declarations, values Values) error {
	for _, name := range decls.Names() {
		decl, _ := decls.Lookup(name)
		if decl.Optional {
			continue
		}
		if _, ok := values[name]; !ok {
			return apperr.PropertyNotSet(name)
		}
	}
	return nil
}
