package objects

import (
	"strings"

	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
)

// messageBox outputs its content whenever it receives a message. The
// content is a list of messages separated by commas, optionally followed
// by ';' separated messages to named receivers. \$n is replaced by the
// n-th atom of the incoming message.
type messageBox struct {
	base
	local  []*message.Message
	remote []namedMessage
}

type namedMessage struct {
	name string
	m    *message.Message
}

func newMessageBox(label string, init *message.Message) (zen.Object, error) {
	b := &messageBox{base: base{label: label, inlets: 1, outlets: 1}}
	sections := strings.Split(joinAtoms(arguments(init)), ";")
	for _, s := range strings.Split(sections[0], ",") {
		if strings.TrimSpace(s) == "" {
			continue
		}
		m, err := message.FromString(0, templateCapacity(s), s)
		if err != nil {
			return nil, err
		}
		b.local = append(b.local, m)
	}
	for _, s := range sections[1:] {
		fields := strings.Fields(s)
		if len(fields) == 0 {
			continue
		}
		rest := strings.Join(fields[1:], " ")
		m, err := message.FromString(0, templateCapacity(rest), rest)
		if err != nil {
			return nil, err
		}
		b.remote = append(b.remote, namedMessage{name: fields[0], m: m})
	}
	return b, nil
}

func templateCapacity(s string) int {
	return len(s)/2 + 1
}

func (b *messageBox) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	for _, t := range b.local {
		if out, ok := b.resolve(env, t, m); ok {
			env.Send(0, out)
		}
	}
	for _, r := range b.remote {
		name, err := message.ResolveString(r.name, m, 1)
		if err != nil {
			env.PrintErr("%s: %v", b.label, err)
			continue
		}
		if out, ok := b.resolve(env, r.m, m); ok {
			env.SendToName(name, out)
		}
	}
}

// resolve substitutes the arguments of m into template.
func (b *messageBox) resolve(env *zen.Env, template, m *message.Message) (*message.Message, bool) {
	out := template.Clone()
	out.SetTimestamp(m.Timestamp())
	for i, a := range template.Atoms() {
		s, ok := a.Symbol()
		if !ok || !strings.Contains(s, `\$`) {
			continue
		}
		resolved, err := message.ResolveString(s, m, 1)
		if err != nil {
			env.PrintErr("%s: %v", b.label, err)
			return nil, false
		}
		if err := out.SetElement(i, message.ParseAtom(resolved)); err != nil {
			env.PrintErr("%s: %v", b.label, err)
			return nil, false
		}
	}
	return out, true
}
