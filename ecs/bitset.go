package ecs

import (
	"encoding/binary"
	"io"
	"iter"
	"math/bits"

	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

const (
	wordBits = 64

	// maxBitsetWords bounds what Deserialize accepts (2^31 bits, enough for every Entity).
	maxBitsetWords = 1 << 25
)

// Bitset is a growable set of non-negative integers backed by 64-bit words.
// The zero value is an empty set ready to use.
//
// The words are a kelindar bitmap, whose kernels do the word-wise algebra. Bitset adds
// explicit handling of operands of different lengths on top.
type Bitset struct {
	words bitmap.Bitmap
}

// NewBitset creates a bitset able to hold bits [0, bits) without growing.
func NewBitset(bits int) *Bitset {
	b := &Bitset{}
	b.EnsureCapacity(bits)
	return b
}

func wordsFor(bits int) int {
	return (bits + wordBits - 1) / wordBits
}

// Len returns the bit capacity currently backed by words.
func (b *Bitset) Len() int {
	return len(b.words) * wordBits
}

// Words exposes the backing words. Callers must not modify them.
func (b *Bitset) Words() []uint64 {
	return b.words
}

// Has reports whether bit i is set. Out-of-range bits are clear.
func (b *Bitset) Has(i int) bool {
	w := i >> 6
	if i < 0 || w >= len(b.words) {
		return false
	}
	return b.words[w]&(1<<(uint(i)&63)) != 0
}

// Set sets bit i to v, growing the bitset when v is true and i is out of range.
// Negative bits are ignored.
func (b *Bitset) Set(i int, v bool) {
	if i < 0 {
		return
	}
	w := i >> 6
	if w >= len(b.words) {
		if !v {
			return
		}
		b.grow(w+1, false)
	}
	if v {
		b.words[w] |= 1 << (uint(i) & 63)
	} else {
		b.words[w] &^= 1 << (uint(i) & 63)
	}
}

// EnsureCapacity grows the bitset so bits [0, bits) are addressable.
func (b *Bitset) EnsureCapacity(bits int) {
	if n := wordsFor(bits); n > len(b.words) {
		b.grow(n, false)
	}
}

// grow extends the bitset to n words. New words are all ones when fill is true.
// Backing storage grows geometrically.
func (b *Bitset) grow(n int, fill bool) {
	old := len(b.words)
	if n <= old {
		return
	}
	if n <= cap(b.words) {
		b.words = b.words[:n]
	} else {
		newCap := max(cap(b.words)*2, n)
		words := make([]uint64, n, newCap)
		copy(words, b.words)
		b.words = words
	}
	var w uint64
	if fill {
		w = ^uint64(0)
	}
	for i := old; i < n; i++ {
		b.words[i] = w
	}
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	return b.words.Count()
}

// Zero clears every bit, keeping the capacity.
func (b *Bitset) Zero() {
	clear(b.words)
}

// All sets every bit within the current capacity.
func (b *Bitset) All() {
	for i := range b.words {
		b.words[i] = ^uint64(0)
	}
}

// CopyFrom makes b an exact copy of o, reusing b's backing array when it is large enough.
func (b *Bitset) CopyFrom(o *Bitset) {
	b.words = append(b.words[:0], o.words...)
}

// Union sets every bit that is set in o, growing b if o is longer.
func (b *Bitset) Union(o *Bitset) {
	if len(o.words) == 0 {
		return
	}
	b.grow(len(o.words), false)
	b.words.Or(o.words)
}

// Intersect keeps only bits also set in o. When the lengths differ, the shorter operand is
// treated as if its missing words had every bit equal to valueIfResize.
func (b *Bitset) Intersect(o *Bitset, valueIfResize bool) {
	n := min(len(b.words), len(o.words))
	if n > 0 {
		prefix := b.words[:n]
		prefix.And(o.words[:n])
	}

	switch {
	case len(b.words) > n:
		if !valueIfResize {
			clear(b.words[n:])
		}
	case len(o.words) > n && valueIfResize:
		b.grow(len(o.words), false)
		copy(b.words[n:], o.words[n:])
	}
}

// Exclude clears every bit that is set in o. When the lengths differ, the shorter operand is
// treated as if its missing words had every bit equal to valueIfResize.
func (b *Bitset) Exclude(o *Bitset, valueIfResize bool) {
	n := min(len(b.words), len(o.words))
	if n > 0 {
		prefix := b.words[:n]
		prefix.AndNot(o.words[:n])
	}

	switch {
	case len(b.words) > n:
		if valueIfResize {
			clear(b.words[n:])
		}
	case len(o.words) > n && valueIfResize:
		b.grow(len(o.words), false)
		for i := n; i < len(o.words); i++ {
			b.words[i] = ^o.words[i]
		}
	}
}

// Equal reports whether both bitsets contain the same bits, ignoring trailing capacity.
func (b *Bitset) Equal(o *Bitset) bool {
	short, long := b.words, o.words
	if len(short) > len(long) {
		short, long = long, short
	}
	for i, w := range short {
		if long[i] != w {
			return false
		}
	}
	for _, w := range long[len(short):] {
		if w != 0 {
			return false
		}
	}
	return true
}

// ForEach calls fn for every set bit in ascending order until fn returns false.
func (b *Bitset) ForEach(fn func(i int) bool) {
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			if !fn(wi*wordBits + tz) {
				return
			}
			w &= w - 1
		}
	}
}

// Iter returns an iterator over set bit positions in ascending order.
func (b *Bitset) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		b.ForEach(yield)
	}
}

// fillEntities writes set bit positions in ascending order into dst and returns how many
// were written. dst must have room for Count() entries.
func (b *Bitset) fillEntities(dst []Entity) int {
	n := 0
	b.words.Range(func(x uint32) {
		dst[n] = Entity(x)
		n++
	})
	return n
}

// Serialize writes the word count followed by the raw words, little endian.
func (b *Bitset) Serialize(w io.Writer) error {
	buf := make([]byte, 0, 4+len(b.words)*8)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b.words)))
	for _, word := range b.words {
		buf = binary.LittleEndian.AppendUint64(buf, word)
	}
	if _, err := w.Write(buf); err != nil {
		return eris.Wrap(err, "failed to write bitset")
	}
	return nil
}

// Deserialize replaces the contents of b with a bitset written by Serialize.
func (b *Bitset) Deserialize(r io.Reader) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return eris.Wrap(err, "failed to read bitset word count")
	}
	n := int(binary.LittleEndian.Uint32(header[:]))
	if n > maxBitsetWords {
		return eris.Errorf("bitset word count %d exceeds limit %d", n, maxBitsetWords)
	}

	raw := make([]byte, n*8)
	if _, err := io.ReadFull(r, raw); err != nil {
		return eris.Wrap(err, "failed to read bitset words")
	}
	b.words = b.words[:0]
	b.grow(n, false)
	for i := range b.words {
		b.words[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	return nil
}
