package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockMapUnknown(t *testing.T) {
	m := newBlockMap()
	_, ok := m.getBlockEntry(vec3{1, 2, 3})
	assert.False(t, ok)
	assert.Equal(t, "", m.getBlock(vec3{1, 2, 3}))
	assert.False(t, m.isBlockChecked(vec3{1, 2, 3}))
	assert.False(t, m.setUnbreakable(vec3{1, 2, 3}))
	assert.Zero(t, m.len())
}

func TestBlockMapUnbreakableIsSticky(t *testing.T) {
	m := newBlockMap()
	pos := vec3{0, -1, 4}
	e := m.setBlock(pos, bedrock)
	assert.True(t, e.Checked)
	assert.True(t, e.Breakable)

	require.True(t, m.setUnbreakable(pos))
	e = m.setBlock(pos, bedrock)
	assert.False(t, e.Breakable, "same block keeps its mark")

	e = m.setBlock(pos, stone)
	assert.True(t, e.Breakable, "a different block is a new block")
}

func TestBlockMapRemove(t *testing.T) {
	m := newBlockMap()
	pos := vec3{2, 0, 0}
	assert.False(t, m.removeBlock(pos))
	e, ok := m.getBlockEntry(pos)
	require.True(t, ok)
	assert.True(t, e.isAir())
	assert.True(t, e.Checked)

	m.setBlock(pos, ironOre)
	m.setUnbreakable(pos)
	assert.True(t, m.removeBlock(pos))
	e, _ = m.getBlockEntry(pos)
	assert.True(t, e.isAir())
	assert.True(t, e.Breakable)
	assert.False(t, m.setUnbreakable(pos), "air cannot be unbreakable")
}

func TestBlockMapEntriesAreChecked(t *testing.T) {
	m := newBlockMap()
	m.setBlock(vec3{1, 0, 0}, stone)
	m.removeBlock(vec3{2, 0, 0})
	m.setBlock(vec3{3, 0, 0}, bedrock)
	m.setUnbreakable(vec3{3, 0, 0})
	assert.Equal(t, 3, m.len())
	for pos, e := range m.blocks {
		assert.True(t, e.Checked, pos.String())
	}
}
