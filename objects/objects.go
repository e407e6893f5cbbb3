// Package objects is the stock object library: message objects for
// control logic and signal objects for synthesis and routing.
package objects

import (
	"strings"

	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
)

type constructor func(label string, init *message.Message) (zen.Object, error)

var constructors = []struct {
	labels []string
	new    constructor
}{
	{[]string{"float", "f"}, newFloat},
	{[]string{"bang", "b"}, newBang},
	{[]string{"symbol"}, newSymbol},
	{[]string{"print"}, newPrint},
	{[]string{"send", "s"}, newSend},
	{[]string{"receive", "r"}, newReceive},
	{[]string{"loadbang"}, newLoadbang},
	{[]string{"metro"}, newMetro},
	{[]string{"delay", "del"}, newDelay},
	{[]string{"+", "-", "*", "/"}, newArithmetic},
	{[]string{"msg"}, newMessageBox},
	{[]string{"trigger", "t"}, newTrigger},
	{[]string{"pack"}, newPack},
	{[]string{"unpack"}, newUnpack},
	{[]string{"spigot"}, newSpigot},
	{[]string{"value", "v"}, newValue},
	{[]string{"text"}, newText},
	{[]string{"switch~"}, newSwitch},
	{[]string{"osc~"}, newOscillator},
	{[]string{"phasor~"}, newOscillator},
	{[]string{"sig~"}, newSig},
	{[]string{"+~", "-~", "*~"}, newSignalArithmetic},
	{[]string{"dac~"}, newDac},
	{[]string{"adc~"}, newAdc},
	{[]string{"send~", "s~"}, newSignalSend},
	{[]string{"receive~", "r~"}, newSignalReceive},
	{[]string{"throw~"}, newThrow},
	{[]string{"catch~"}, newCatch},
	{[]string{"line~"}, newLine},
	{[]string{"snapshot~"}, newSnapshot},
	{[]string{"delwrite~"}, newDelayWrite},
	{[]string{"delread~"}, newDelayRead},
	{[]string{"vd~"}, newVariableDelay},
	{[]string{"table"}, newTable},
	{[]string{"tabread"}, newTableRead},
	{[]string{"tabwrite"}, newTableWrite},
	{[]string{"tabread~"}, newTableReadSignal},
}

// Register adds every stock object to r.
func Register(r *zen.Registry) error {
	for _, c := range constructors {
		for _, label := range c.labels {
			label, fn := label, c.new
			err := r.Register(label, func(init *message.Message) (zen.Object, error) {
				return fn(label, init)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// NewRegistry returns a registry with the graph ports and every stock
// object.
func NewRegistry() *zen.Registry {
	r := zen.NewRegistry()
	if err := Register(r); err != nil {
		panic("objects: " + err.Error())
	}
	return r
}

// base carries the label and port counts shared by all objects.
type base struct {
	label   string
	inlets  int
	outlets int
}

func (b base) Label() string { return b.label }
func (b base) Inlets() int   { return b.inlets }
func (b base) Outlets() int  { return b.outlets }

// floatArg returns the float at index of init or def.
func floatArg(init *message.Message, index int, def float32) float32 {
	if init.IsFloat(index) {
		return init.Float(index)
	}
	return def
}

// symbolArg returns the symbol at index of init or def.
func symbolArg(init *message.Message, index int, def string) string {
	if init.IsSymbol(index) {
		return init.Symbol(index)
	}
	return def
}

// arguments returns the creation arguments. A message holding a single
// bang stands for no arguments.
func arguments(init *message.Message) []message.Atom {
	if init.Len() == 1 && init.IsBang(0) {
		return nil
	}
	return init.Atoms()
}

func joinAtoms(atoms []message.Atom) string {
	s := make([]string, len(atoms))
	for i := range atoms {
		s[i] = atoms[i].String()
	}
	return strings.Join(s, " ")
}

func bang(ts message.Timestamp) *message.Message {
	return message.FromAtoms(ts, message.BangAtom())
}
