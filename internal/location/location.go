// Package location converts between dotted "book.hymn.stanza" verse
// coordinates and the fixed-width BBHHHSS identifiers used by the VedaWeb
// document API.
package location

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Field widths and upper bounds of the fixed-width form.
const (
	IDLength  = 7
	MaxBook   = 99
	MaxHymn   = 999
	MaxStanza = 99
)

// ErrOutOfRange is returned when a coordinate does not fit its field.
var ErrOutOfRange = errors.New("location out of range")

// RangeError reports which field of a coordinate is out of range.
type RangeError struct {
	Field string
	Value int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [1,%d]", e.Field, e.Value, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// Location is a stanza coordinate.
type Location struct {
	Book   int `json:"book"`
	Hymn   int `json:"hymn"`
	Stanza int `json:"stanza"`
}

// String returns the dotted form, e.g. "1.1.1".
func (l Location) String() string {
	return Display(l.Book, l.Hymn, l.Stanza)
}

// ID returns the fixed-width form, e.g. "0100101".
func (l Location) ID() (string, error) {
	return Encode(l.Book, l.Hymn, l.Stanza)
}

var fixedWidth = regexp.MustCompile(`^\d{7}$`)

// Encode zero-pads book to 2 digits, hymn to 3 and stanza to 2.
func Encode(book, hymn, stanza int) (string, error) {
	if err := checkRange("book", book, MaxBook); err != nil {
		return "", err
	}
	if err := checkRange("hymn", hymn, MaxHymn); err != nil {
		return "", err
	}
	if err := checkRange("stanza", stanza, MaxStanza); err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d%03d%02d", book, hymn, stanza), nil
}

func checkRange(field string, value, max int) error {
	if value < 1 || value > max {
		return &RangeError{Field: field, Value: value, Max: max}
	}
	return nil
}

// Decode splits a fixed-width identifier. It reports false unless id is
// exactly seven digits.
func Decode(id string) (Location, bool) {
	if len(id) != IDLength || !fixedWidth.MatchString(id) {
		return Location{}, false
	}
	book, _ := strconv.Atoi(id[0:2])
	hymn, _ := strconv.Atoi(id[2:5])
	stanza, _ := strconv.Atoi(id[5:7])
	return Location{Book: book, Hymn: hymn, Stanza: stanza}, true
}

// Display formats a coordinate as "book.hymn.stanza".
func Display(book, hymn, stanza int) string {
	return fmt.Sprintf("%d.%d.%d", book, hymn, stanza)
}

// Kind tags a Resolution.
type Kind int

const (
	// Unchanged means the input could not be read as a coordinate.
	Unchanged Kind = iota
	// Encoded means the input resolved to a fixed-width identifier.
	Encoded
)

func (k Kind) String() string {
	if k == Encoded {
		return "encoded"
	}
	return "unchanged"
}

// Resolution is the outcome of EncodeFromDotted: either an encoded
// identifier or the untouched input.
type Resolution struct {
	kind  Kind
	value string
}

// Kind reports whether the input was encoded.
func (r Resolution) Kind() Kind { return r.kind }

// ID returns the fixed-width identifier when the input was encoded.
func (r Resolution) ID() (string, bool) {
	if r.kind != Encoded {
		return "", false
	}
	return r.value, true
}

// Input returns the original string when the input was left unchanged.
func (r Resolution) Input() (string, bool) {
	if r.kind != Unchanged {
		return "", false
	}
	return r.value, true
}

func (r Resolution) String() string {
	return r.kind.String() + "(" + r.value + ")"
}

// dottedGrammar reads three integers separated by runs of '.', '-' or '_'.
//
//nolint:govet // participle grammar tags are not standard struct tags
type dottedGrammar struct {
	Book   string `@Int`
	Hymn   string `@Int`
	Stanza string `@Int`
}

var dottedLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Sep", Pattern: `[.\-_]+`},
})

var dottedParser = participle.MustBuild[dottedGrammar](
	participle.Lexer(dottedLexer),
	participle.Elide("Sep"),
)

// EncodeFromDotted resolves "1.1.1", "1-1-1", "1_1_1" or an already encoded
// "0100101" to a fixed-width identifier. Input that is not three numeric
// parts comes back Unchanged. Parts too large for their field are an error.
func EncodeFromDotted(s string) (Resolution, error) {
	if fixedWidth.MatchString(s) {
		return Resolution{kind: Encoded, value: s}, nil
	}

	parsed, err := dottedParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return Resolution{kind: Unchanged, value: s}, nil
	}

	var parts [3]int
	for i, p := range []struct {
		field, raw string
		max        int
	}{
		{"book", parsed.Book, MaxBook},
		{"hymn", parsed.Hymn, MaxHymn},
		{"stanza", parsed.Stanza, MaxStanza},
	} {
		n, err := strconv.Atoi(p.raw)
		if err != nil {
			// only overflow reaches here; the lexer admits digits alone
			return Resolution{}, fmt.Errorf("%w: %s %s exceeds %d: %v", ErrOutOfRange, p.field, p.raw, p.max, err)
		}
		parts[i] = n
	}

	id, err := Encode(parts[0], parts[1], parts[2])
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to encode %q: %w", s, err)
	}
	return Resolution{kind: Encoded, value: id}, nil
}
