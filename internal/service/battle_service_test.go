package service

import (
	"testing"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBattle(t *testing.T) {
	svc := NewBattleService(combat.DefaultMoves)
	r := testRoster()

	out, err := svc.ResolveBattle(r[0], r[2], "inferno_cup")
	require.NoError(t, err)
	assert.Contains(t, []int{1, 2}, out.Winner)
	assert.Equal(t, [2]string{"cinder", "bramble"}, out.Names)

	_, err = svc.ResolveBattle(r[0], r[2], "lava_bowl")
	assert.ErrorIs(t, err, ErrValidation)

	broken := r[1]
	broken.Stats.Speed = 0
	_, err = svc.ResolveBattle(r[0], broken, "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, combat.ErrInvalidRoster)
}
