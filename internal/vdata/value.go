// Package vdata parses structured text records (.vdata files) into a generic
// tree of blocks, sequences and scalars, and encodes that tree as JSON.
package vdata

// Value is a node of a parsed record tree. The set of implementations is
// closed: String, Number, Bool, *Block and *Sequence.
type Value interface {
	isValue()
}

// String is a string scalar.
type String string

// Number is a numeric scalar. All numbers are double precision.
type Number float64

// Bool is a boolean scalar.
type Bool bool

func (String) isValue()    {}
func (Number) isValue()    {}
func (Bool) isValue()      {}
func (*Block) isValue()    {}
func (*Sequence) isValue() {}

// Block is an ordered mapping from key to Value.
type Block struct {
	keys   []string
	values map[string]Value
}

// NewBlock returns an empty block.
func NewBlock() *Block {
	return &Block{values: make(map[string]Value)}
}

// Set assigns v at key. An existing key keeps its position.
func (b *Block) Set(key string, v Value) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = v
}

// Get returns the value stored at key.
func (b *Block) Get(key string) (Value, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.values[key]
	return v, ok
}

// Has reports whether key is present.
func (b *Block) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (b *Block) Keys() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Len returns the number of keys.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Each calls fn for every entry in insertion order until fn returns false.
func (b *Block) Each(fn func(key string, v Value) bool) {
	if b == nil {
		return
	}
	for _, k := range b.keys {
		if !fn(k, b.values[k]) {
			return
		}
	}
}

// Block returns the child block at key, or nil.
func (b *Block) Block(key string) *Block {
	v, _ := b.Get(key)
	return AsBlock(v)
}

// Sequence returns the child sequence at key, or nil.
func (b *Block) Sequence(key string) *Sequence {
	v, _ := b.Get(key)
	return AsSequence(v)
}

// String returns the scalar at key rendered as a string.
func (b *Block) String(key string) (string, bool) {
	v, ok := b.Get(key)
	if !ok {
		return "", false
	}
	return AsString(v)
}

// Number returns the scalar at key as a number.
func (b *Block) Number(key string) (float64, bool) {
	v, _ := b.Get(key)
	return AsNumber(v)
}

// Lookup follows a path of keys through nested blocks.
func (b *Block) Lookup(path ...string) (Value, bool) {
	var cur Value = b
	for _, k := range path {
		blk := AsBlock(cur)
		if blk == nil {
			return nil, false
		}
		next, ok := blk.Get(k)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

// Sequence is an ordered list of values.
type Sequence struct {
	items []Value
}

// NewSequence returns a sequence holding items.
func NewSequence(items ...Value) *Sequence {
	return &Sequence{items: items}
}

// Append adds v at the end.
func (s *Sequence) Append(v Value) {
	s.items = append(s.items, v)
}

// Len returns the number of elements.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the i-th element.
func (s *Sequence) At(i int) Value {
	return s.items[i]
}

// Items returns a copy of the elements.
func (s *Sequence) Items() []Value {
	if s == nil {
		return nil
	}
	out := make([]Value, len(s.items))
	copy(out, s.items)
	return out
}

// AsBlock returns v as a block, or nil.
func AsBlock(v Value) *Block {
	b, _ := v.(*Block)
	return b
}

// AsSequence returns v as a sequence, or nil.
func AsSequence(v Value) *Sequence {
	s, _ := v.(*Sequence)
	return s
}

// AsNumber returns numeric scalars. Strings are not converted.
func AsNumber(v Value) (float64, bool) {
	n, ok := v.(Number)
	return float64(n), ok
}

// AsBool returns boolean scalars.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// AsString renders any scalar as text. Containers report false.
func AsString(v Value) (string, bool) {
	switch x := v.(type) {
	case String:
		return string(x), true
	case Number:
		return FormatNumber(float64(x)), true
	case Bool:
		if x {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
