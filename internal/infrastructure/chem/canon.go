package chem

import (
	"cmp"
	"slices"
)

// CanonicalRanks assigns every atom a distinct rank that depends only on the
// molecular graph, not on the input atom order (up to symmetry)
func CanonicalRanks(m *Molecule) []int {
	n := m.NumAtoms()
	ring := m.RingAtoms()
	invariants := make([][]int, n)
	for i, a := range m.atoms {
		r := 0
		if ring[i] {
			r = 1
		}
		arom := 0
		if a.Aromatic {
			arom = 1
		}
		invariants[i] = []int{m.Degree(i), a.Number, arom, a.Charge, m.TotalHydrogens(i), a.Isotope, r}
	}
	ranks := rankBy(invariants)
	ranks = refine(m, ranks)

	for {
		tied := lowestTie(ranks)
		if tied < 0 {
			return ranks
		}
		doubled := make([]int, n)
		broken := false
		for i, r := range ranks {
			doubled[i] = 2 * r
			if r == tied && !broken {
				doubled[i]--
				broken = true
			}
		}
		ranks = refine(m, doubled)
	}
}

// refine splits rank classes by neighborhood until the partition is stable
func refine(m *Molecule, ranks []int) []int {
	n := len(ranks)
	ranks = rankBy(wrap(ranks))
	classes := countDistinct(ranks)
	for {
		invariants := make([][]int, n)
		for i := range ranks {
			nbrs := make([]int, 0, len(m.adj[i]))
			for _, bi := range m.adj[i] {
				b := m.bonds[bi]
				nbrs = append(nbrs, ranks[b.Other(i)]*8+int(b.Order))
			}
			slices.Sort(nbrs)
			invariants[i] = append([]int{ranks[i]}, nbrs...)
		}
		next := rankBy(invariants)
		nextClasses := countDistinct(next)
		if nextClasses == classes {
			return next
		}
		ranks, classes = next, nextClasses
	}
}

// rankBy maps each invariant vector to its dense position in sorted order
func rankBy(invariants [][]int) []int {
	order := make([]int, len(invariants))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return slices.Compare(invariants[a], invariants[b])
	})
	ranks := make([]int, len(invariants))
	rank := 0
	for k, idx := range order {
		if k > 0 && slices.Compare(invariants[order[k-1]], invariants[idx]) != 0 {
			rank++
		}
		ranks[idx] = rank
	}
	return ranks
}

func wrap(ranks []int) [][]int {
	out := make([][]int, len(ranks))
	for i, r := range ranks {
		out[i] = []int{r}
	}
	return out
}

func countDistinct(ranks []int) int {
	seen := make(map[int]struct{}, len(ranks))
	for _, r := range ranks {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// lowestTie returns the smallest rank shared by two or more atoms, or -1
func lowestTie(ranks []int) int {
	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	tied := -1
	for r, c := range counts {
		if c > 1 && (tied < 0 || r < tied) {
			tied = r
		}
	}
	return tied
}

// byRank orders atom indices by rank
func byRank(atoms []int, ranks []int) {
	slices.SortFunc(atoms, func(a, b int) int {
		return cmp.Compare(ranks[a], ranks[b])
	})
}
