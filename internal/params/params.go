// Package params parses fcmm parameter strings and validates them against a
// per-command schema.
//
// A parameter string is a sequence of "-flag [value]" tokens, for example
// "-b local -url https://host/group/repo.git -force".
package params

import (
	"strings"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
)

// Map holds the flags of one invocation, keyed by the flag as typed (with its
// leading "-"). Bare words map to themselves with an empty value.
type Map map[string]string

// ValueKind describes what a flag accepts after it.
type ValueKind int

const (
	// NoValue flags are switches; a value, if given, is ignored
	NoValue ValueKind = iota
	// AnyValue flags need a non-empty value
	AnyValue
	// OneOf flags need a non-empty value from Flag.Allowed
	OneOf
)

// Flag declares one parameter with its short and long alias.
type Flag struct {
	Short   string
	Long    string
	Value   ValueKind
	Allowed []string
}

// Names returns the declared aliases with their "-" prefix.
func (f Flag) Names() []string {
	names := make([]string, 0, 2)
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	if f.Long != "" && f.Long != f.Short {
		names = append(names, "-"+f.Long)
	}
	return names
}

// Schema is the parameter contract of one command.
type Schema struct {
	// Required lists alias pairs of which at least one must be present
	Required [][2]string
	Flags    []Flag
}

// HelpFlag is accepted by every command.
var HelpFlag = Flag{Short: "h", Long: "help"}

// Token is one "-flag [value]" pair or bare word, as typed.
type Token struct {
	Key   string
	Value string
}

// Tokens tokenizes raw on whitespace, keeping the typed order. A token
// starting with "-" followed by a token that does not start with "-" takes
// that token as its value.
func Tokens(raw string) []Token {
	words := strings.Fields(raw)
	tokens := make([]Token, 0, len(words))
	for i := 0; i < len(words); i++ {
		word := words[i]
		if strings.HasPrefix(word, "-") && i+1 < len(words) && !strings.HasPrefix(words[i+1], "-") {
			tokens = append(tokens, Token{Key: word, Value: words[i+1]})
			i++
			continue
		}
		tokens = append(tokens, Token{Key: word})
	}
	return tokens
}

// Split tokenizes raw into a Map. Later duplicates overwrite earlier ones.
func Split(raw string) Map {
	return fromTokens(Tokens(raw))
}

func fromTokens(tokens []Token) Map {
	m := make(Map, len(tokens))
	for _, t := range tokens {
		m[t.Key] = t.Value
	}
	return m
}

// Has reports whether either alias was supplied.
func (m Map) Has(short, long string) bool {
	_, ok := m.lookup(short, long)
	return ok
}

// Value returns the value of the first supplied alias, or def when neither
// alias is present or the supplied value is empty.
func (m Map) Value(short, long, def string) string {
	v, ok := m.lookup(short, long)
	if !ok || v == "" {
		return def
	}
	return v
}

func (m Map) lookup(short, long string) (string, bool) {
	if short != "" {
		if v, ok := m["-"+short]; ok {
			return v, true
		}
	}
	if long != "" {
		if v, ok := m["-"+long]; ok {
			return v, true
		}
	}
	return "", false
}

// IsHelp reports whether the help flag was supplied.
func (m Map) IsHelp() bool {
	return m.Has(HelpFlag.Short, HelpFlag.Long)
}

// Validate checks tokens against s: required alias pairs first, then each
// flag in the order it was typed. The first violation is returned as a
// parameter error. A repeated flag is checked once, with its last value.
func Validate(tokens []Token, s Schema) error {
	m := fromTokens(tokens)
	for _, pair := range s.Required {
		if !m.Has(pair[0], pair[1]) {
			return fcmmerrors.NewParameterError("must supply parameter -%s / -%s", pair[0], pair[1])
		}
	}

	declared := make(map[string]Flag, len(s.Flags)*2+2)
	for _, f := range append([]Flag{HelpFlag}, s.Flags...) {
		for _, name := range f.Names() {
			declared[name] = f
		}
	}

	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		key := t.Key
		if seen[key] {
			continue
		}
		seen[key] = true

		f, ok := declared[key]
		if !ok {
			return fcmmerrors.NewParameterError("parameter %s is not supported", key)
		}
		value := m[key]
		switch f.Value {
		case AnyValue:
			if value == "" {
				return fcmmerrors.NewParameterError("parameter %s must have a value", key)
			}
		case OneOf:
			if value == "" {
				return fcmmerrors.NewParameterError("parameter %s must have a value", key)
			}
			if !contains(f.Allowed, value) {
				return fcmmerrors.NewParameterError("value %q of parameter %s is not supported, use one of: %s",
					value, key, strings.Join(f.Allowed, ", "))
			}
		}
	}
	return nil
}

func contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
