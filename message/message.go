// Package message implements timestamped control messages made of typed
// atoms.
package message

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	zerrors "github.com/dudk/zen/errors"
)

// DefaultCapacity is the number of atoms a message holds unless
// requested otherwise.
const DefaultCapacity = 32

var numeric = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// IsNumeric reports whether s is the textual form of a number.
func IsNumeric(s string) bool {
	return numeric.MatchString(s)
}

// Message is an ordered, bounded sequence of atoms with a timestamp.
type Message struct {
	timestamp Timestamp
	atoms     []Atom
	capacity  int
}

// FromTimestamp returns a message with a single bang.
func FromTimestamp(ts Timestamp) *Message {
	return WithCapacity(ts, DefaultCapacity)
}

// WithCapacity returns a message with a single bang that can hold up to
// capacity atoms.
func WithCapacity(ts Timestamp, capacity int) *Message {
	if capacity < 1 {
		capacity = 1
	}
	atoms := make([]Atom, 1, capacity)
	atoms[0] = BangAtom()
	return &Message{
		timestamp: ts,
		atoms:     atoms,
		capacity:  capacity,
	}
}

// FromAtoms returns a message holding atoms. An empty list yields a bang.
func FromAtoms(ts Timestamp, atoms ...Atom) *Message {
	capacity := DefaultCapacity
	if len(atoms) > capacity {
		capacity = len(atoms)
	}
	m := WithCapacity(ts, capacity)
	if len(atoms) > 0 {
		m.atoms = append(m.atoms[:0], atoms...)
	}
	return m
}

// FromFloat returns a message with a single float.
func FromFloat(ts Timestamp, f float32) *Message {
	return FromAtoms(ts, FloatAtom(f))
}

// FromSymbol returns a message with a single symbol.
func FromSymbol(ts Timestamp, s string) *Message {
	return FromAtoms(ts, SymbolAtom(s))
}

// FromString tokenizes s on spaces and semicolons. Numeric tokens become
// floats, "!" and "bang" become bangs and everything else is a symbol. An
// empty string yields a single bang.
func FromString(ts Timestamp, capacity int, s string) (*Message, error) {
	m := WithCapacity(ts, capacity)
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || unicode.IsSpace(r)
	})
	for i, token := range tokens {
		if i >= m.capacity {
			return nil, errors.Wrapf(zerrors.ErrBufferOverflow, "message %q exceeds %d atoms", s, m.capacity)
		}
		if err := m.SetElement(i, ParseAtom(token)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FromStringAndArgs resolves \$n references in s against args and then
// parses the result.
func FromStringAndArgs(ts Timestamp, capacity int, s string, args *Message) (*Message, error) {
	resolved, err := ResolveString(s, args, 0)
	if err != nil {
		return nil, err
	}
	return FromString(ts, capacity, resolved)
}

// ParseAtom converts a token into a float, bang or symbol atom.
func ParseAtom(token string) Atom {
	switch {
	case IsNumeric(token):
		if f, err := strconv.ParseFloat(token, 32); err == nil {
			return FloatAtom(float32(f))
		}
	case token == "!" || token == "bang":
		return BangAtom()
	}
	return SymbolAtom(token)
}

// ResolveString substitutes every \$n in template with the textual form of
// the argument at index n-offset. Arguments that are neither floats nor
// symbols are substituted with nothing.
func ResolveString(template string, args *Message, offset int) (string, error) {
	if args == nil {
		return template, nil
	}
	parts := strings.Split(template, `\$`)
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" || part[0] < '0' || part[0] > '9' {
			return "", errors.Wrapf(zerrors.ErrParse, "invalid argument reference in %q", template)
		}
		index := int(part[0]-'0') - offset
		if index < 0 || index >= args.Len() {
			return "", errors.Wrapf(zerrors.ErrIndexOutOfBounds, "argument %c of %d", part[0], args.Len())
		}
		switch a := args.atoms[index]; a.kind {
		case Float, Symbol:
			b.WriteString(a.String())
		}
		b.WriteString(part[1:])
	}
	return b.String(), nil
}

// SetElement overwrites the atom at index or appends it if index equals
// the current length. Growing past capacity returns ErrBufferOverflow.
// Non-contiguous growth panics.
func (m *Message) SetElement(index int, a Atom) error {
	switch {
	case index >= 0 && index < len(m.atoms):
		m.atoms[index] = a
	case index == len(m.atoms):
		if index >= m.capacity {
			return errors.Wrapf(zerrors.ErrBufferOverflow, "message capacity %d", m.capacity)
		}
		m.atoms = append(m.atoms, a)
	default:
		panic(fmt.Sprintf("set element %d of %d: noncontiguous", index, len(m.atoms)))
	}
	return nil
}

// Append adds an atom at the end.
func (m *Message) Append(a Atom) error {
	return m.SetElement(len(m.atoms), a)
}

// ResolveSymbolsToType rewrites type names into typed placeholders:
// float/f, bang/b, list/l and anything/a. Symbol names are kept and any
// other symbol becomes anything.
func (m *Message) ResolveSymbolsToType() {
	for i, a := range m.atoms {
		if a.kind != Symbol {
			continue
		}
		switch a.symbol {
		case "symbol", "s":
		case "bang", "b":
			m.atoms[i] = BangAtom()
		case "float", "f":
			m.atoms[i] = FloatAtom(0)
		case "list", "l":
			m.atoms[i] = ListAtom()
		default:
			m.atoms[i] = AnythingAtom()
		}
	}
}

// HasFormat checks atom types against format, one of 'f', 's' or 'b' per
// atom. Lengths must match.
func (m *Message) HasFormat(format string) bool {
	if len(format) != len(m.atoms) {
		return false
	}
	for i := range format {
		var ok bool
		switch format[i] {
		case 'f':
			ok = m.IsFloat(i)
		case 's':
			ok = m.IsSymbol(i)
		case 'b':
			ok = m.IsBang(i)
		}
		if !ok {
			return false
		}
	}
	return true
}

// Timestamp returns the message time in milliseconds.
func (m *Message) Timestamp() Timestamp {
	return m.timestamp
}

// SetTimestamp sets the message time in milliseconds.
func (m *Message) SetTimestamp(ts Timestamp) {
	m.timestamp = ts
}

// Len returns the number of atoms.
func (m *Message) Len() int {
	return len(m.atoms)
}

// Cap returns the maximum number of atoms.
func (m *Message) Cap() int {
	return m.capacity
}

// Atoms returns the atoms of the message. The slice must not be modified.
func (m *Message) Atoms() []Atom {
	return m.atoms
}

// Element returns the atom at index. Out of range yields anything.
func (m *Message) Element(index int) Atom {
	if index < 0 || index >= len(m.atoms) {
		return AnythingAtom()
	}
	return m.atoms[index]
}

// Type returns the kind of the atom at index.
func (m *Message) Type(index int) Kind {
	return m.Element(index).kind
}

// IsFloat reports whether the atom at index is a float.
func (m *Message) IsFloat(index int) bool {
	return m.Type(index) == Float
}

// IsSymbol reports whether the atom at index is a symbol.
func (m *Message) IsSymbol(index int) bool {
	return m.Type(index) == Symbol
}

// IsSymbolString reports whether the atom at index is the symbol s.
func (m *Message) IsSymbolString(index int, s string) bool {
	v, ok := m.Element(index).Symbol()
	return ok && v == s
}

// IsBang reports whether the atom at index is a bang.
func (m *Message) IsBang(index int) bool {
	return m.Type(index) == Bang
}

// Float returns the float at index or zero.
func (m *Message) Float(index int) float32 {
	f, _ := m.Element(index).Float()
	return f
}

// Symbol returns the symbol at index or an empty string.
func (m *Message) Symbol(index int) string {
	s, _ := m.Element(index).Symbol()
	return s
}

// Clone returns a deep copy.
func (m *Message) Clone() *Message {
	c := &Message{
		timestamp: m.timestamp,
		atoms:     make([]Atom, len(m.atoms), m.capacity),
		capacity:  m.capacity,
	}
	for i, a := range m.atoms {
		if a.kind == List {
			a.list = append([]Atom(nil), a.list...)
		}
		c.atoms[i] = a
	}
	return c
}

// Equal reports whether both messages have the same timestamp and atoms.
func (m *Message) Equal(o *Message) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil || m.timestamp != o.timestamp || len(m.atoms) != len(o.atoms) {
		return false
	}
	for i := range m.atoms {
		if !m.atoms[i].Equal(o.atoms[i]) {
			return false
		}
	}
	return true
}

func (m *Message) String() string {
	s := make([]string, len(m.atoms))
	for i := range m.atoms {
		s[i] = m.atoms[i].String()
	}
	return strings.Join(s, " ")
}
