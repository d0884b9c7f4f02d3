package chem

import "slices"

// perceiveAromaticity marks six-membered carbon and nitrogen rings written
// with alternating double bonds as aromatic. A ring sharing atoms with one
// already aromatic counts those atoms as satisfied, so fused Kekulé systems
// such as naphthalene convert fully. Hydrogen counts are unchanged.
func perceiveAromaticity(m *Molecule) {
	rings := m.sixRings()
	for changed := true; changed; {
		changed = false
		for _, ring := range rings {
			if m.allAromatic(ring) || !m.sextet(ring) {
				continue
			}
			for k, a := range ring {
				m.atoms[a].Aromatic = true
				bi, _ := m.BondBetween(a, ring[(k+1)%len(ring)])
				m.bonds[bi].Order = BondAromatic
			}
			changed = true
		}
	}
}

// sixRings lists every simple six-atom cycle once, in ring order starting
// from its lowest atom index
func (m *Molecule) sixRings() [][]int {
	inRing := m.RingBonds()
	onPath := make([]bool, len(m.atoms))
	path := make([]int, 0, 6)
	var rings [][]int

	var extend func(a int)
	extend = func(a int) {
		start := path[0]
		for _, bi := range m.adj[a] {
			if !inRing[bi] {
				continue
			}
			n := m.bonds[bi].Other(a)
			if n == start && len(path) == 6 {
				// each cycle is walked in both directions
				if path[1] < path[5] {
					rings = append(rings, slices.Clone(path))
				}
				continue
			}
			if n <= start || onPath[n] || len(path) == 6 {
				continue
			}
			path = append(path, n)
			onPath[n] = true
			extend(n)
			path = path[:len(path)-1]
			onPath[n] = false
		}
	}
	for s := range m.atoms {
		path = append(path[:0], s)
		onPath[s] = true
		extend(s)
		onPath[s] = false
	}
	return rings
}

func (m *Molecule) allAromatic(ring []int) bool {
	for _, a := range ring {
		if !m.atoms[a].Aromatic {
			return false
		}
	}
	return true
}

// sextet reports whether every non-aromatic ring atom is a neutral carbon or
// two-connected nitrogen whose only double bond lies in the ring
func (m *Molecule) sextet(ring []int) bool {
	inRing := map[int]bool{}
	for k, a := range ring {
		bi, ok := m.BondBetween(a, ring[(k+1)%len(ring)])
		if !ok {
			return false
		}
		inRing[bi] = true
	}
	for _, a := range ring {
		atom := m.atoms[a]
		if atom.Aromatic {
			continue
		}
		if atom.Charge != 0 || (atom.Number != 6 && atom.Number != 7) {
			return false
		}
		if atom.Number == 7 && m.Degree(a) != 2 {
			return false
		}
		doubles := 0
		for _, bi := range m.adj[a] {
			switch m.bonds[bi].Order {
			case BondDouble:
				if !inRing[bi] {
					return false
				}
				doubles++
			case BondTriple, BondAromatic:
				return false
			}
		}
		if doubles != 1 {
			return false
		}
	}
	return true
}
