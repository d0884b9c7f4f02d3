package chem

import (
	"slices"
	"strconv"
	"strings"
)

// matchOrder lists template atoms so that every atom after the first of its
// component is adjacent to an earlier one
func (t *template) matchOrder() []int {
	seen := make([]bool, len(t.atoms))
	order := make([]int, 0, len(t.atoms))
	for root := range t.atoms {
		if seen[root] {
			continue
		}
		seen[root] = true
		queue := []int{root}
		for len(queue) > 0 {
			a := queue[0]
			queue = queue[1:]
			order = append(order, a)
			for _, bi := range t.adj[a] {
				n := t.other(bi, a)
				if !seen[n] {
					seen[n] = true
					queue = append(queue, n)
				}
			}
		}
	}
	return order
}

// matches returns every embedding of the template in m, one per distinct set
// of molecule atoms. Each match maps template atom index to molecule atom.
func (t *template) matches(m *Molecule) [][]int {
	order := t.matchOrder()
	ring := m.RingAtoms()
	assign := make([]int, len(t.atoms))
	for i := range assign {
		assign[i] = -1
	}
	used := make([]bool, m.NumAtoms())
	seen := map[string]bool{}
	var out [][]int

	var extend func(k int)
	extend = func(k int) {
		if k == len(order) {
			key := atomSetKey(assign)
			if !seen[key] {
				seen[key] = true
				out = append(out, slices.Clone(assign))
			}
			return
		}
		ta := order[k]
		for _, cand := range t.candidates(m, ta, assign) {
			if used[cand] || !t.atoms[ta].expr.match(m, cand, ring) {
				continue
			}
			if !t.bondsAgree(m, ta, cand, assign) {
				continue
			}
			assign[ta] = cand
			used[cand] = true
			extend(k + 1)
			assign[ta] = -1
			used[cand] = false
		}
	}
	extend(0)
	return out
}

// candidates narrows the search to neighbors of an already placed template
// neighbor when one exists
func (t *template) candidates(m *Molecule, ta int, assign []int) []int {
	for _, bi := range t.adj[ta] {
		if placed := assign[t.other(bi, ta)]; placed >= 0 {
			return m.Neighbors(placed)
		}
	}
	all := make([]int, m.NumAtoms())
	for i := range all {
		all[i] = i
	}
	return all
}

func (t *template) bondsAgree(m *Molecule, ta, cand int, assign []int) bool {
	for _, bi := range t.adj[ta] {
		placed := assign[t.other(bi, ta)]
		if placed < 0 {
			continue
		}
		mb, ok := m.BondBetween(cand, placed)
		if !ok || !t.bonds[bi].query.match(m.bonds[mb].Order) {
			return false
		}
	}
	return true
}

func atomSetKey(assign []int) string {
	sorted := slices.Clone(assign)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, a := range sorted {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}
