package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextLineageID(t *testing.T) {
	t.Parallel()

	base := "lottery_20240101_role_server_abc123_1704135600"

	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"first reroll", nil, base + "_reroll"},
		{"second reroll", []string{base + "_reroll"}, base + "_reroll2"},
		{"third reroll", []string{base + "_reroll", base + "_reroll2"}, base + "_reroll3"},
		{"fills first gap", []string{base + "_reroll", base + "_reroll3"}, base + "_reroll2"},
		{"first slot free", []string{base + "_reroll2"}, base + "_reroll"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rerolls := []*RerollRecord{{ID: "other_reroll", BaseID: "other"}}
			for _, id := range tt.existing {
				rerolls = append(rerolls, &RerollRecord{ID: id, BaseID: base})
			}
			assert.Equal(t, tt.want, NextLineageID(base, rerolls))
		})
	}
}

func TestLineageSuffix(t *testing.T) {
	t.Parallel()

	n, ok := LineageSuffix("b", "b_reroll")
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok = LineageSuffix("b", "b_reroll12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = LineageSuffix("b", "b_rerollx")
	assert.False(t, ok)

	_, ok = LineageSuffix("b", "b_reroll1")
	assert.False(t, ok)

	_, ok = LineageSuffix("b", "c_reroll")
	assert.False(t, ok)
}
