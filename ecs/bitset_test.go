package ecs_test

import (
	"bytes"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/kelindar/bitmap"
	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomSets builds the same random set as a Bitset and as a kelindar bitmap.
func randomSets(rng *rand.Rand, limit, n int) (*ecs.Bitset, bitmap.Bitmap) {
	b := ecs.NewBitset(0)
	var ref bitmap.Bitmap
	for range n {
		i := rng.IntN(limit)
		b.Set(i, true)
		ref.Set(uint32(i))
	}
	return b, ref
}

func bitsOf(b *ecs.Bitset) []int {
	return slices.Collect(b.Iter())
}

func bitsOfRef(ref bitmap.Bitmap) []int {
	var out []int
	ref.Range(func(x uint32) {
		out = append(out, int(x))
	})
	return out
}

func TestBitsetSetAndCount(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	b := ecs.NewBitset(0)
	model := map[int]bool{}

	for range 5000 {
		i := rng.IntN(3000)
		v := rng.IntN(3) > 0
		b.Set(i, v)
		model[i] = v
	}

	want := 0
	for i, v := range model {
		require.Equal(t, v, b.Has(i), "bit %d", i)
		if v {
			want++
		}
	}
	assert.Equal(t, want, b.Count())
}

func TestBitsetClearOutOfRangeDoesNotGrow(t *testing.T) {
	b := ecs.NewBitset(64)
	b.Set(1000, false)
	assert.Equal(t, 64, b.Len())
	assert.False(t, b.Has(1000))
	assert.False(t, b.Has(-1))
}

func TestBitsetIgnoresNegativeBits(t *testing.T) {
	b := ecs.NewBitset(0)
	assert.NotPanics(t, func() {
		b.Set(-1, true)
		b.Set(-70, false)
	})
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Count())
	assert.False(t, b.Has(-1))
}

func TestBitsetIterAscending(t *testing.T) {
	b := ecs.NewBitset(0)
	for _, i := range []int{130, 3, 64, 0, 63, 129} {
		b.Set(i, true)
	}
	assert.Equal(t, []int{0, 3, 63, 64, 129, 130}, bitsOf(b))

	var first []int
	b.ForEach(func(i int) bool {
		first = append(first, i)
		return len(first) < 2
	})
	assert.Equal(t, []int{0, 3}, first)
}

func TestBitsetZeroAllCopy(t *testing.T) {
	b := ecs.NewBitset(128)
	b.Set(5, true)
	b.All()
	assert.Equal(t, 128, b.Count())

	var c ecs.Bitset
	c.CopyFrom(b)
	assert.True(t, c.Equal(b))

	b.Zero()
	assert.Zero(t, b.Count())
	assert.Equal(t, 128, b.Len())
	assert.Equal(t, 128, c.Count(), "copies do not share words")
}

func TestBitsetEqualIgnoresTrailingWords(t *testing.T) {
	a := ecs.NewBitset(64)
	b := ecs.NewBitset(1024)
	a.Set(10, true)
	b.Set(10, true)
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	b.Set(900, true)
	assert.False(t, a.Equal(b))
}

func TestBitsetAlgebraMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 9))

	for round := range 200 {
		a, refA := randomSets(rng, 64*(1+rng.IntN(8)), rng.IntN(200))
		b, refB := randomSets(rng, 64*(1+rng.IntN(8)), rng.IntN(200))

		u := ecs.NewBitset(0)
		u.CopyFrom(a)
		u.Union(b)
		refU := refA.Clone(nil)
		refU.Or(refB)
		require.Equal(t, bitsOfRef(refU), bitsOf(u), "union round %d", round)

		i := ecs.NewBitset(0)
		i.CopyFrom(a)
		i.Intersect(b, false)
		refI := refA.Clone(nil)
		refI.And(refB)
		require.Equal(t, bitsOfRef(refI), bitsOf(i), "intersect round %d", round)

		x := ecs.NewBitset(0)
		x.CopyFrom(a)
		x.Exclude(b, false)
		refX := refA.Clone(nil)
		refX.AndNot(refB)
		require.Equal(t, bitsOfRef(refX), bitsOf(x), "exclude round %d", round)
	}
}

func TestBitsetValueIfResize(t *testing.T) {
	short := ecs.NewBitset(64)
	short.Set(1, true)
	short.Set(2, true)

	long := ecs.NewBitset(192)
	long.Set(1, true)
	long.Set(100, true)
	long.Set(150, true)

	t.Run("intersect longer receiver", func(t *testing.T) {
		for _, fill := range []bool{false, true} {
			b := ecs.NewBitset(0)
			b.CopyFrom(long)
			b.Intersect(short, fill)
			if fill {
				// Missing words of short count as all ones: long's high bits survive.
				assert.Equal(t, []int{1, 100, 150}, bitsOf(b))
			} else {
				assert.Equal(t, []int{1}, bitsOf(b))
			}
		}
	})

	t.Run("intersect shorter receiver", func(t *testing.T) {
		for _, fill := range []bool{false, true} {
			b := ecs.NewBitset(0)
			b.CopyFrom(short)
			b.Intersect(long, fill)
			if fill {
				assert.Equal(t, []int{1, 100, 150}, bitsOf(b))
				assert.Equal(t, long.Len(), b.Len())
			} else {
				assert.Equal(t, []int{1}, bitsOf(b))
			}
		}
	})

	t.Run("exclude longer receiver", func(t *testing.T) {
		for _, fill := range []bool{false, true} {
			b := ecs.NewBitset(0)
			b.CopyFrom(long)
			b.Exclude(short, fill)
			if fill {
				// Missing words of short count as all ones and exclude everything there.
				assert.Equal(t, []int(nil), bitsOf(b))
			} else {
				assert.Equal(t, []int{100, 150}, bitsOf(b))
			}
		}
	})

	t.Run("exclude shorter receiver", func(t *testing.T) {
		for _, fill := range []bool{false, true} {
			b := ecs.NewBitset(0)
			b.CopyFrom(short)
			b.Exclude(long, fill)
			if fill {
				// The receiver's missing words are all ones minus long's bits.
				assert.Equal(t, 1+63+63, b.Count())
				assert.True(t, b.Has(2))
				assert.False(t, b.Has(1))
				assert.False(t, b.Has(100))
				assert.True(t, b.Has(101))
			} else {
				assert.Equal(t, []int{2}, bitsOf(b))
			}
		}
	})
}

// TestBitsetValueIfResizeModel checks both polarities against a per-bit model in which the
// shorter operand is padded with the fill value.
func TestBitsetValueIfResizeModel(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 13))

	bitAt := func(b *ecs.Bitset, width, i int, fill bool) bool {
		if i >= b.Len() && b.Len() < width {
			return fill
		}
		return b.Has(i)
	}

	for round := range 300 {
		fill := round%2 == 0
		a, _ := randomSets(rng, 64*(1+rng.IntN(6)), rng.IntN(120))
		b, _ := randomSets(rng, 64*(1+rng.IntN(6)), rng.IntN(120))
		width := max(a.Len(), b.Len())

		and := ecs.NewBitset(0)
		and.CopyFrom(a)
		and.Intersect(b, fill)

		not := ecs.NewBitset(0)
		not.CopyFrom(a)
		not.Exclude(b, fill)

		for i := range width {
			x, y := bitAt(a, width, i, fill), bitAt(b, width, i, fill)
			require.Equal(t, x && y, and.Has(i), "intersect round %d bit %d fill %v", round, i, fill)
			require.Equal(t, x && !y, not.Has(i), "exclude round %d bit %d fill %v", round, i, fill)
		}
	}
}

func TestBitsetSerializeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	b, _ := randomSets(rng, 10_000, 300)

	var buf bytes.Buffer
	require.NoError(t, b.Serialize(&buf))
	assert.Equal(t, 4+len(b.Words())*8, buf.Len())

	var out ecs.Bitset
	require.NoError(t, out.Deserialize(&buf))
	for i := range 10_100 {
		require.Equal(t, b.Has(i), out.Has(i), "bit %d", i)
	}
	assert.True(t, b.Equal(&out))
}

func TestBitsetDeserializeTruncated(t *testing.T) {
	b := ecs.NewBitset(256)
	b.Set(200, true)

	var buf bytes.Buffer
	require.NoError(t, b.Serialize(&buf))

	var out ecs.Bitset
	assert.Error(t, out.Deserialize(bytes.NewReader(buf.Bytes()[:buf.Len()-3])))
	assert.Error(t, out.Deserialize(bytes.NewReader(nil)))
}
