package message

import (
	"strconv"
	"strings"
)

// Kind is the type of an atom.
type Kind int

const (
	// Anything is an uninitialised placeholder.
	Anything Kind = iota
	// Bang carries no value.
	Bang
	// Float is a 32-bit float value.
	Float
	// Symbol is a string value.
	Symbol
	// List is a nested list of atoms.
	List
)

func (k Kind) String() string {
	switch k {
	case Bang:
		return "bang"
	case Float:
		return "float"
	case Symbol:
		return "symbol"
	case List:
		return "list"
	}
	return "anything"
}

// Atom is one typed value of a message.
type Atom struct {
	kind   Kind
	float  float32
	symbol string
	list   []Atom
}

// BangAtom returns a bang atom.
func BangAtom() Atom {
	return Atom{kind: Bang}
}

// FloatAtom returns a float atom.
func FloatAtom(f float32) Atom {
	return Atom{kind: Float, float: f}
}

// SymbolAtom returns a symbol atom.
func SymbolAtom(s string) Atom {
	return Atom{kind: Symbol, symbol: s}
}

// ListAtom returns a list atom.
func ListAtom(atoms ...Atom) Atom {
	return Atom{kind: List, list: atoms}
}

// AnythingAtom returns a placeholder atom.
func AnythingAtom() Atom {
	return Atom{}
}

// Kind returns the atom type.
func (a Atom) Kind() Kind {
	return a.kind
}

// Float returns the float value and true if the atom is a float.
func (a Atom) Float() (float32, bool) {
	return a.float, a.kind == Float
}

// Symbol returns the symbol value and true if the atom is a symbol.
func (a Atom) Symbol() (string, bool) {
	return a.symbol, a.kind == Symbol
}

// List returns the nested atoms and true if the atom is a list.
func (a Atom) List() ([]Atom, bool) {
	return a.list, a.kind == List
}

// Equal reports structural equality.
func (a Atom) Equal(b Atom) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Float:
		return a.float == b.float
	case Symbol:
		return a.symbol == b.symbol
	case List:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !a.list[i].Equal(b.list[i]) {
				return false
			}
		}
	}
	return true
}

func (a Atom) String() string {
	switch a.kind {
	case Bang:
		return "bang"
	case Float:
		return formatFloat(a.float)
	case Symbol:
		return a.symbol
	case List:
		s := make([]string, len(a.list))
		for i := range a.list {
			s[i] = a.list[i].String()
		}
		return strings.Join(s, " ")
	}
	return "anything"
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
