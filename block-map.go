package main

// What is known about one coordinate. An empty Name with Checked set means
// air, or a block that has been dug out.
type blockEntry struct {
	Name      string `json:"name"`
	Checked   bool   `json:"checked"`
	Breakable bool   `json:"breakable"`
}

func (b blockEntry) isAir() bool {
	return b.Name == ""
}

// Sparse map from relative coordinates to block knowledge. Coordinates are
// never visited densely, so only observed cells get an entry.
type blockMap struct {
	blocks map[vec3]*blockEntry
}

func newBlockMap() *blockMap {
	return &blockMap{blocks: map[vec3]*blockEntry{}}
}

func (m *blockMap) len() int {
	return len(m.blocks)
}

// Returns the entry at pos. ok is false when pos was never observed.
func (m *blockMap) getBlockEntry(pos vec3) (blockEntry, bool) {
	b := m.blocks[pos]
	if b == nil {
		return blockEntry{}, false
	}
	return *b, true
}

// Returns the block name at pos, "" if air or unknown.
func (m *blockMap) getBlock(pos vec3) string {
	if b := m.blocks[pos]; b != nil {
		return b.Name
	}
	return ""
}

func (m *blockMap) isBlockChecked(pos vec3) bool {
	b := m.blocks[pos]
	return b != nil && b.Checked
}

// Records name at pos. An unbreakable mark survives a rewrite with the same
// name; a different name means a new block and resets it.
func (m *blockMap) setBlock(pos vec3, name string) blockEntry {
	entry := blockEntry{Name: name, Checked: true, Breakable: true}
	if prev := m.blocks[pos]; prev != nil && prev.Name != "" && prev.Name == name {
		entry.Breakable = prev.Breakable
	}
	m.blocks[pos] = &entry
	return entry
}

// Marks the block at pos as unbreakable. Returns false if there is no known
// block there.
func (m *blockMap) setUnbreakable(pos vec3) bool {
	b := m.blocks[pos]
	if b == nil || b.Name == "" {
		return false
	}
	b.Breakable = false
	return true
}

// Logically removes the block at pos, leaving a checked air entry. Returns
// true if a named block was there before.
func (m *blockMap) removeBlock(pos vec3) bool {
	b := m.blocks[pos]
	if b == nil {
		m.blocks[pos] = &blockEntry{Checked: true, Breakable: true}
		return false
	}
	had := b.Name != ""
	b.Name = ""
	b.Checked = true
	b.Breakable = true
	return had
}
