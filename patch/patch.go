// Package patch loads Pure Data patch files into graphs.
//
// A patch is a sequence of records terminated by ';'. Records start with
// #N (new canvas), #X (object, message, connection and other canvas
// content) or #A (array data). Lines that do not start a record continue
// the previous one.
package patch

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/dudk/zen"
	zerrors "github.com/dudk/zen/errors"
	"github.com/dudk/zen/message"
)

// initCapacity is the maximum number of creation arguments of an object.
const initCapacity = 32

// Load parses the patch file at path into a new top-level graph of c.
func Load(c *zen.Context, path string, args *message.Message) (*zen.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Parse(c, f, args)
	if err != nil {
		return nil, errors.Wrapf(err, "patch %s", path)
	}
	return g, nil
}

// ParseString parses a patch held in s.
func ParseString(c *zen.Context, s string, args *message.Message) (*zen.Graph, error) {
	return Parse(c, strings.NewReader(s), args)
}

// Parse reads a patch from r into a new top-level graph of c. The graph is
// returned detached. Objects that cannot be created are reported through
// the context and left out together with their connections.
func Parse(c *zen.Context, r io.Reader, args *message.Message) (*zen.Graph, error) {
	records, err := split(r)
	if err != nil {
		return nil, err
	}
	p := parser{ctx: c, args: args}
	for _, rec := range records {
		if err := p.parse(rec); err != nil {
			if p.root != nil {
				err = multierr.Append(err, c.RemoveGraph(p.root))
			}
			return nil, err
		}
	}
	if p.root == nil {
		return nil, errors.Wrap(zerrors.ErrParse, "no canvas")
	}
	return p.root, nil
}

// canvas is a graph under construction. Objects are the ids in file order,
// zen.NilObject where creation failed.
type canvas struct {
	graph   *zen.Graph
	objects []zen.ObjectID
}

type parser struct {
	ctx   *zen.Context
	args  *message.Message
	root  *zen.Graph
	stack []*canvas
}

func (p *parser) current() *canvas {
	return p.stack[len(p.stack)-1]
}

func (p *parser) parse(rec string) error {
	fields := strings.Fields(rec)
	if len(fields) == 0 {
		return nil
	}
	if fields[0] != "#N" && len(p.stack) == 0 {
		return errors.Wrapf(zerrors.ErrParse, "%q before canvas", rec)
	}
	switch fields[0] {
	case "#N":
		return p.canvas(fields)
	case "#X":
		return p.content(rec, fields)
	case "#A":
		p.ctx.PrintErr("Array data is not supported.")
	default:
		p.ctx.PrintErr("Unrecognised hash type: \"%s\"", rec)
	}
	return nil
}

func (p *parser) canvas(fields []string) error {
	if len(fields) < 2 || fields[1] != "canvas" {
		p.ctx.PrintErr("Unrecognised #N object type: \"%s\".", strings.Join(fields, " "))
		return nil
	}
	if len(p.stack) == 0 {
		g, err := p.ctx.NewGraph(p.args)
		if err != nil {
			return err
		}
		p.root = g
		p.stack = append(p.stack, &canvas{graph: g})
		return nil
	}
	parent := p.current()
	g, err := parent.graph.NewSubgraph(0, 0)
	if err != nil {
		return err
	}
	parent.objects = append(parent.objects, g.Container())
	p.stack = append(p.stack, &canvas{graph: g})
	return nil
}

func (p *parser) content(rec string, fields []string) error {
	if len(fields) < 2 {
		return errors.Wrapf(zerrors.ErrParse, "%q", rec)
	}
	cv := p.current()
	switch fields[1] {
	case "obj":
		x, y, err := position(fields)
		if err != nil {
			return err
		}
		if len(fields) < 5 {
			// an empty box
			cv.objects = append(cv.objects, zen.NilObject)
			return nil
		}
		return p.object(cv, x, y, fields[4], strings.Join(fields[5:], " "))
	case "msg":
		x, y, err := position(fields)
		if err != nil {
			return err
		}
		text := unescape(strings.Join(fields[4:], " "))
		return p.create(cv, x, y, "msg", message.FromAtoms(0, message.SymbolAtom(text)))
	case "floatatom":
		x, y, err := position(fields)
		if err != nil {
			return err
		}
		return p.create(cv, x, y, "float", message.FromFloat(0, 0))
	case "symbolatom":
		x, y, err := position(fields)
		if err != nil {
			return err
		}
		return p.create(cv, x, y, "symbol", nil)
	case "text":
		x, y, err := position(fields)
		if err != nil {
			return err
		}
		text := unescape(strings.Join(fields[4:], " "))
		return p.create(cv, x, y, "text", message.FromAtoms(0, message.SymbolAtom(text)))
	case "connect":
		return p.connect(cv, fields)
	case "restore":
		if len(p.stack) == 1 {
			return errors.Wrap(zerrors.ErrParse, "restore without subpatch")
		}
		p.stack = p.stack[:len(p.stack)-1]
	case "coords":
	case "declare":
		p.ctx.PrintErr("declare \"%s\" flag is not supported.", strings.Join(fields[2:], " "))
	default:
		p.ctx.PrintErr("Unrecognised #X object type: \"%s\"", rec)
	}
	return nil
}

// object creates an object box. The label and the arguments are resolved
// against the arguments of the canvas.
func (p *parser) object(cv *canvas, x, y float64, label, rest string) error {
	args := cv.graph.Arguments()
	label, err := message.ResolveString(label, args, 0)
	if err != nil {
		return err
	}
	var init *message.Message
	if rest != "" {
		if init, err = message.FromStringAndArgs(0, initCapacity, rest, args); err != nil {
			return errors.Wrapf(err, "object %s", label)
		}
	}
	return p.create(cv, x, y, label, init)
}

func (p *parser) create(cv *canvas, x, y float64, label string, init *message.Message) error {
	id, err := cv.graph.CreateWith(x, y, label, init)
	switch {
	case errors.Is(err, zerrors.ErrUnknownObject):
		id = zen.NilObject
	case err != nil:
		return errors.Wrapf(err, "object %s", label)
	}
	cv.objects = append(cv.objects, id)
	return nil
}

func (p *parser) connect(cv *canvas, fields []string) error {
	if len(fields) != 6 {
		return errors.Wrapf(zerrors.ErrParse, "connect %v", fields[2:])
	}
	var idx [4]int
	for i := range idx {
		n, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return errors.Wrapf(zerrors.ErrParse, "connect %v", fields[2:])
		}
		idx[i] = n
	}
	from, to := idx[0], idx[2]
	if from < 0 || from >= len(cv.objects) || to < 0 || to >= len(cv.objects) {
		return errors.Wrapf(zerrors.ErrIndexOutOfBounds, "connect %d to %d of %d objects", from, to, len(cv.objects))
	}
	if cv.objects[from].IsNil() || cv.objects[to].IsNil() {
		p.ctx.PrintErr("Connection ignored: %d %d %d %d refers to a missing object.", from, idx[1], to, idx[3])
		return nil
	}
	return cv.graph.AddConnection(cv.objects[from], idx[1], cv.objects[to], idx[3])
}

func position(fields []string) (float64, float64, error) {
	if len(fields) < 4 {
		return 0, 0, errors.Wrapf(zerrors.ErrParse, "%s without position", fields[1])
	}
	x, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, 0, errors.Wrapf(zerrors.ErrParse, "%s position %q", fields[1], fields[2])
	}
	y, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return 0, 0, errors.Wrapf(zerrors.ErrParse, "%s position %q", fields[1], fields[3])
	}
	return x, y, nil
}

var unescaper = strings.NewReplacer(`\;`, ";", `\,`, ",")

// unescape restores separators escaped in message and comment text.
func unescape(s string) string {
	return unescaper.Replace(s)
}

// split reads r into records without their terminating ';' and box width
// suffix.
func split(r io.Reader) ([]string, error) {
	var (
		records []string
		current strings.Builder
	)
	flush := func() {
		if rec := strings.TrimSpace(current.String()); rec != "" {
			records = append(records, stripWidth(trimTerminator(rec)))
		}
		current.Reset()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#N") || strings.HasPrefix(line, "#X") || strings.HasPrefix(line, "#A") {
			flush()
		} else if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return records, nil
}

// stripWidth removes a trailing ", f <width>" that records the width of a
// box.
func stripWidth(rec string) string {
	i := strings.LastIndexByte(rec, ',')
	if i <= 0 || rec[i-1] == '\\' {
		return rec
	}
	tail := strings.Fields(rec[i+1:])
	if len(tail) != 2 || tail[0] != "f" {
		return rec
	}
	if _, err := strconv.Atoi(tail[1]); err != nil {
		return rec
	}
	return strings.TrimSpace(rec[:i])
}

func trimTerminator(rec string) string {
	if strings.HasSuffix(rec, ";") && !strings.HasSuffix(rec, `\;`) {
		return strings.TrimSpace(rec[:len(rec)-1])
	}
	return rec
}
