package vdata

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Parse builds a record tree from the lines of a .vdata file.
//
// The root is a Block unless the first meaningful token opens a sequence.
// Malformed input never produces an error: tokens that cannot be placed are
// skipped and parsing continues with the next line.
func Parse(lines []string) Value {
	p := newParser(meaningfulLines(lines))
	return p.run()
}

// ParseReader reads r line by line and parses it. Only read errors are
// reported.
func ParseReader(r io.Reader) (Value, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan vdata: %w", err)
	}
	return Parse(lines), nil
}

// meaningfulLines trims every line and drops blanks, comments and <! markers.
// Lookahead and lookbehind in the parser only ever see the survivors.
func meaningfulLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" ||
			strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "<!") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// parser holds the state of a single Parse call.
type parser struct {
	lines []string
	pos   int

	root    Value
	current Value
	stack   []Value

	pendingKey string
	hasPending bool

	// rootOpened is set once a document-level opener has fixed the root.
	rootOpened bool
}

func newParser(lines []string) *parser {
	root := NewBlock()
	return &parser{
		lines:   lines,
		root:    root,
		current: root,
	}
}

func (p *parser) run() Value {
	for p.pos = 0; p.pos < len(p.lines); p.pos++ {
		line := p.lines[p.pos]
		switch {
		case line == "{":
			p.openBlock()
		case line == "[":
			p.openSequence()
		case strings.Contains(line, "="):
			p.assign(line)
		case isCloser(line):
			p.close()
		default:
			p.bareValue(line)
		}
	}
	return p.root
}

func (p *parser) next() string {
	if p.pos+1 < len(p.lines) {
		return p.lines[p.pos+1]
	}
	return ""
}

func (p *parser) previous() string {
	if p.pos > 0 {
		return p.lines[p.pos-1]
	}
	return ""
}

func (p *parser) descend(child Value) {
	p.stack = append(p.stack, p.current)
	p.current = child
}

func (p *parser) clearKey() {
	p.pendingKey = ""
	p.hasPending = false
}

// pendingSlotFree reports whether the current block can take a container at
// the pending key.
func (p *parser) pendingSlotFree() (*Block, bool) {
	blk := AsBlock(p.current)
	if blk == nil || !p.hasPending || blk.Has(p.pendingKey) {
		return nil, false
	}
	return blk, true
}

func (p *parser) openBlock() {
	if seq := AsSequence(p.current); seq != nil {
		child := NewBlock()
		seq.Append(child)
		p.descend(child)
		return
	}
	if blk, ok := p.pendingSlotFree(); ok {
		child := NewBlock()
		blk.Set(p.pendingKey, child)
		p.descend(child)
		p.clearKey()
		return
	}
	if p.atDocumentStart() {
		// Opener at document level: the placeholder root is this block.
		p.root = p.current
		p.rootOpened = true
	}
	// Anything else is a stray opener, including the literal "{" that follows
	// a "key =" line which already descended.
}

func (p *parser) openSequence() {
	if seq := AsSequence(p.current); seq != nil {
		// Only an element of the enclosing array when it directly follows
		// another opener or the close of a sibling array.
		if prev := p.previous(); prev == "[" || prev == "]," {
			child := NewSequence()
			seq.Append(child)
			p.descend(child)
		}
		return
	}
	if blk, ok := p.pendingSlotFree(); ok {
		child := NewSequence()
		blk.Set(p.pendingKey, child)
		p.descend(child)
		p.clearKey()
		return
	}
	if p.atDocumentStart() {
		child := NewSequence()
		p.current = child
		p.root = child
		p.rootOpened = true
	}
}

// atDocumentStart reports whether an opener may still decide the root: the
// stack is empty, no document-level opener was seen and nothing was built.
func (p *parser) atDocumentStart() bool {
	return len(p.stack) == 0 && !p.rootOpened && AsBlock(p.root).Len() == 0
}

func (p *parser) assign(line string) {
	keyPart, valuePart, _ := strings.Cut(line, "=")
	key := strings.TrimSpace(keyPart)
	raw := strings.TrimSpace(valuePart)
	p.pendingKey, p.hasPending = key, true

	next := p.next()
	var child Value
	switch {
	case raw == "{" || next == "{":
		child = NewBlock()
	case raw == "[" || next == "[":
		child = NewSequence()
	}

	if child != nil {
		if blk := AsBlock(p.current); blk != nil {
			blk.Set(key, child)
		}
		// Inside a sequence the container is still entered so that its
		// closer balances, but it is not reachable from the tree.
		p.descend(child)
		p.clearKey()
		return
	}

	if blk := AsBlock(p.current); blk != nil {
		blk.Set(key, Coerce(raw))
	}
	p.clearKey()
}

func (p *parser) close() {
	if len(p.stack) == 0 {
		return
	}
	last := len(p.stack) - 1
	p.current = p.stack[last]
	p.stack = p.stack[:last]
	p.clearKey()
}

func (p *parser) bareValue(line string) {
	v := Coerce(line)
	if seq := AsSequence(p.current); seq != nil {
		seq.Append(v)
		return
	}
	if blk := AsBlock(p.current); blk != nil && p.hasPending {
		blk.Set(p.pendingKey, v)
		p.clearKey()
	}
}

func isCloser(line string) bool {
	switch line {
	case "}", "},", "]", "],":
		return true
	}
	return false
}
