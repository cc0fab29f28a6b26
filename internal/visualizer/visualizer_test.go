package visualizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/PassHash/internal/models"
)

func TestKeypad(t *testing.T) {
	var k Keypad
	require.NoError(t, k.PressAll("12*#0"))
	assert.Equal(t, "12*#0", k.Salt())

	assert.ErrorIs(t, k.Press("A"), ErrInvalidKey)
	assert.ErrorIs(t, k.PressAll("9x"), ErrInvalidKey)
	assert.Equal(t, "12*#09", k.Salt(), "valid keys before the invalid one are kept")

	k.Reset()
	assert.Equal(t, "", k.Salt())
}

func TestPattern(t *testing.T) {
	var p Pattern
	for _, pt := range []int{0, 4, 8, 5} {
		require.True(t, p.Connect(pt))
	}
	assert.False(t, p.Connect(4), "points are visited once")
	assert.False(t, p.Connect(9))
	assert.False(t, p.Connect(-1))

	assert.Equal(t, "0485", p.Salt())
	assert.Equal(t, []int{0, 4, 8, 5}, p.Points())

	p.Reset()
	assert.Empty(t, p.Salt())
}

func TestPointAt(t *testing.T) {
	idx, ok := PointAt(2, 1)
	assert.True(t, ok)
	assert.Equal(t, 5, idx)

	_, ok = PointAt(3, 0)
	assert.False(t, ok)
}

func TestVault(t *testing.T) {
	var v Vault
	v.Turn(4)
	v.Commit()
	v.Turn(-5) // wraps to 35
	v.Commit()
	v.Set(73) // wraps to 1
	v.Commit()

	assert.Equal(t, []int{4, 35, 1}, v.Combination())
	assert.Equal(t, "4-35-1", v.Salt())

	v.Reset()
	assert.Equal(t, 0, v.Current())
	assert.Equal(t, "", v.Salt())
}

func TestNew(t *testing.T) {
	for _, m := range []models.VisualizationMethod{models.Keypad, models.AndroidPattern, models.BankVault} {
		w, err := New(m)
		require.NoError(t, err)
		assert.Equal(t, m, w.Method())
	}
	_, err := New("slider")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestSession(t *testing.T) {
	var s Session
	assert.Equal(t, "", s.SecondarySalt())
	assert.Equal(t, models.Keypad, s.Method())

	assert.ErrorIs(t, s.ApplySalt("", models.Keypad), ErrEmptySalt)
	assert.ErrorIs(t, s.ApplySalt("123", "slider"), ErrUnknownMethod)

	var p Pattern
	p.Connect(6)
	p.Connect(3)
	require.NoError(t, s.Apply(&p))
	assert.Equal(t, "63", s.SecondarySalt())
	assert.Equal(t, models.AndroidPattern, s.Method())

	s.Clear()
	assert.Equal(t, "", s.SecondarySalt())
}

func TestSession_ApplyEmptyWidget(t *testing.T) {
	var s Session
	assert.ErrorIs(t, s.Apply(&Vault{}), ErrEmptySalt)
}
