package chem

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// WriteSMILES serialises a molecule. The non-canonical form walks atoms in
// index order starting from the lowest index of each fragment; the canonical
// form walks them in CanonicalRanks order and sorts fragments.
func WriteSMILES(m *Molecule, canonical bool) string {
	if m.NumAtoms() == 0 {
		return ""
	}
	ranks := make([]int, m.NumAtoms())
	for i := range ranks {
		ranks[i] = i
	}
	if canonical {
		ranks = CanonicalRanks(m)
	}

	var fragments []string
	for _, comp := range m.Components() {
		start := comp[0]
		for _, a := range comp {
			if ranks[a] < ranks[start] {
				start = a
			}
		}
		w := newSmilesWriter(m, ranks)
		w.plan(start, -1)
		w.write(start, -1)
		fragments = append(fragments, w.sb.String())
	}
	if canonical {
		slices.Sort(fragments)
	}
	return strings.Join(fragments, ".")
}

type child struct {
	atom, bond int
}

type smilesWriter struct {
	m        *Molecule
	ranks    []int
	visited  []bool
	children [][]child
	closures [][]int // atom -> ring bond indices in discovery order
	isRing   map[int]bool
	digits   map[int]int // open ring bond -> digit
	inUse    map[int]bool
	sb       strings.Builder
}

func newSmilesWriter(m *Molecule, ranks []int) *smilesWriter {
	n := m.NumAtoms()
	return &smilesWriter{
		m:        m,
		ranks:    ranks,
		visited:  make([]bool, n),
		children: make([][]child, n),
		closures: make([][]int, n),
		isRing:   map[int]bool{},
		digits:   map[int]int{},
		inUse:    map[int]bool{},
	}
}

// plan builds the DFS spanning tree and collects ring closure bonds
func (w *smilesWriter) plan(atom, parentBond int) {
	w.visited[atom] = true
	nbrs := w.m.Neighbors(atom)
	byRank(nbrs, w.ranks)
	for _, n := range nbrs {
		bi, _ := w.m.BondBetween(atom, n)
		if bi == parentBond || w.isRing[bi] {
			continue
		}
		if w.visited[n] {
			w.isRing[bi] = true
			w.closures[n] = append(w.closures[n], bi)
			w.closures[atom] = append(w.closures[atom], bi)
			continue
		}
		w.children[atom] = append(w.children[atom], child{atom: n, bond: bi})
		w.plan(n, bi)
	}
}

func (w *smilesWriter) write(atom, viaBond int) {
	if viaBond >= 0 {
		w.sb.WriteString(w.bondSymbol(viaBond))
	}
	w.sb.WriteString(w.atomSymbol(atom, w.chirality(atom, viaBond)))

	for _, bi := range w.closures[atom] {
		if d, open := w.digits[bi]; open {
			w.sb.WriteString(w.bondSymbol(bi))
			w.sb.WriteString(ringDigit(d))
			delete(w.digits, bi)
			delete(w.inUse, d)
			continue
		}
		d := 1
		for w.inUse[d] {
			d++
		}
		w.inUse[d] = true
		w.digits[bi] = d
		w.sb.WriteString(ringDigit(d))
	}

	kids := w.children[atom]
	for i, c := range kids {
		if i < len(kids)-1 {
			w.sb.WriteByte('(')
			w.write(c.atom, c.bond)
			w.sb.WriteByte(')')
		} else {
			w.write(c.atom, c.bond)
		}
	}
}

func ringDigit(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return fmt.Sprintf("%%%02d", d)
}

func (w *smilesWriter) bondSymbol(bi int) string {
	b := w.m.bonds[bi]
	bothAromatic := w.m.atoms[b.A].Aromatic && w.m.atoms[b.B].Aromatic
	switch b.Order {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondAromatic:
		if bothAromatic {
			return ""
		}
		return ":"
	default:
		if bothAromatic {
			return "-"
		}
		return ""
	}
}

// chirality returns the mark to write for atom: its stored parity, inverted
// when the written neighbor order is an odd permutation of the reference
// order
func (w *smilesWriter) chirality(atom, viaBond int) Chirality {
	c := w.m.atoms[atom].Chiral
	ref := w.m.stereo[atom]
	if c == ChiralNone || ref == nil {
		return ChiralNone
	}
	written := make([]int, 0, len(ref))
	if viaBond >= 0 {
		written = append(written, w.m.bonds[viaBond].Other(atom))
	}
	if w.m.atoms[atom].HCount+w.m.ImplicitHydrogens(atom) > 0 {
		written = append(written, implicitH)
	}
	for _, bi := range w.closures[atom] {
		written = append(written, w.m.bonds[bi].Other(atom))
	}
	for _, k := range w.children[atom] {
		written = append(written, k.atom)
	}
	if oddPermutation(ref, written) {
		return c.inverted()
	}
	return c
}

// oddPermutation counts the inversions taking ref to order
func oddPermutation(ref, order []int) bool {
	pos := make([]int, len(order))
	for i, a := range order {
		pos[i] = slices.Index(ref, a)
	}
	odd := false
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			if pos[i] > pos[j] {
				odd = !odd
			}
		}
	}
	return odd
}

func (w *smilesWriter) atomSymbol(i int, chiral Chirality) string {
	a := w.m.atoms[i]
	sym := a.Element
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	if a.Element == "*" && a.Charge == 0 && a.Isotope == 0 && a.HCount == 0 {
		return "*"
	}

	h := a.HCount + w.m.ImplicitHydrogens(i)
	plain := a.Charge == 0 && a.Isotope == 0 && chiral == ChiralNone
	if organicSubset[a.Element] && plain && h == w.m.defaultHydrogens(i) {
		return sym
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(sym)
	switch chiral {
	case ChiralCCW:
		sb.WriteByte('@')
	case ChiralCW:
		sb.WriteString("@@")
	}
	if h > 0 {
		sb.WriteByte('H')
		if h > 1 {
			sb.WriteString(strconv.Itoa(h))
		}
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString(strconv.Itoa(a.Charge))
	}
	sb.WriteByte(']')
	return sb.String()
}
