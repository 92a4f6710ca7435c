package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounts_Transitions(t *testing.T) {
	c, err := NewCounts(100)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 100, Available: 100}, c)

	c, err = c.Reserve(30)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 100, Available: 70, Reserved: 30}, c)

	c, err = c.Confirm(20)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 100, Available: 70, Reserved: 10, Sold: 20}, c)

	c, err = c.Release(10)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 100, Available: 80, Sold: 20}, c)
	assert.NoError(t, c.Validate())
}

func TestCounts_Failures(t *testing.T) {
	base := Counts{Total: 100, Available: 100}

	tests := []struct {
		name string
		run  func(Counts) (Counts, error)
		want error
	}{
		{"reserve more than available", func(c Counts) (Counts, error) { return c.Reserve(150) }, ErrInsufficientInventory},
		{"release more than reserved", func(c Counts) (Counts, error) { return c.Release(1) }, ErrOverRelease},
		{"confirm more than reserved", func(c Counts) (Counts, error) { return c.Confirm(1) }, ErrOverConfirm},
		{"zero quantity", func(c Counts) (Counts, error) { return c.Reserve(0) }, ErrInvalidQuantity},
		{"negative quantity", func(c Counts) (Counts, error) { return c.Release(-3) }, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run(base)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, base, got, "counts must be unchanged on failure")
		})
	}
}

func TestCounts_RoundTrips(t *testing.T) {
	base := Counts{Total: 40, Available: 25, Reserved: 5, Sold: 10}

	reserved, err := base.Reserve(5)
	require.NoError(t, err)
	released, err := reserved.Release(5)
	require.NoError(t, err)
	assert.Equal(t, base, released)

	confirmed, err := reserved.Confirm(5)
	require.NoError(t, err)
	assert.Equal(t, base.Reserved, confirmed.Reserved)
	assert.Equal(t, base.Available-5, confirmed.Available)
	assert.Equal(t, base.Sold+5, confirmed.Sold)
}

func TestCounts_Resize(t *testing.T) {
	c := Counts{Total: 100, Available: 10, Reserved: 80, Sold: 10}

	_, err := c.Resize(50)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	grown, err := c.Resize(120)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 120, Available: 30, Reserved: 80, Sold: 10}, grown)

	shrunk, err := c.Resize(90)
	require.NoError(t, err)
	assert.Equal(t, int64(0), shrunk.Available)
	assert.NoError(t, shrunk.Validate())

	_, err = c.Resize(-1)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCounts_Apply(t *testing.T) {
	c := Counts{Total: 100, Available: 70, Reserved: 10, Sold: 20}
	n := func(v int64) *int64 { return &v }

	out, err := c.Apply(CountsPatch{Available: n(60), Sold: n(30)})
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 100, Available: 60, Reserved: 10, Sold: 30}, out)

	out, err = c.Apply(CountsPatch{Sold: n(50)})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, c, out)

	_, err = c.Apply(CountsPatch{Available: n(-10), Reserved: n(90)})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	fresh := Counts{Total: 100, Available: 100}
	out, err = fresh.Apply(CountsPatch{Available: n(math.MaxInt64), Reserved: n(math.MaxInt64), Sold: n(102)})
	require.ErrorIs(t, err, ErrInvalidQuantity, "wrapping counters must not balance")
	assert.Equal(t, fresh, out)

	huge := Counts{Total: math.MaxInt64, Available: math.MaxInt64}
	_, err = huge.Apply(CountsPatch{Reserved: n(math.MaxInt64), Sold: n(math.MaxInt64)})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}
