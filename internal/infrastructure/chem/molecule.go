package chem

import (
	"fmt"
	"slices"
	"strings"
)

// BondOrder is the multiplicity of a bond
type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondAromatic
)

// valence returns the contribution of the bond to an atom's valence; an
// aromatic bond counts as one and the atom's own pi electron is added
// separately
func (o BondOrder) valence() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	default:
		return 1
	}
}

// Chirality is the tetrahedral parity of an atom in SMILES terms. Looking
// from the first neighbor of the atom's reference order, the remaining
// neighbors run anticlockwise for ChiralCCW (@) and clockwise for ChiralCW (@@).
type Chirality int

const (
	ChiralNone Chirality = iota
	ChiralCCW
	ChiralCW
)

func (c Chirality) inverted() Chirality {
	switch c {
	case ChiralCCW:
		return ChiralCW
	case ChiralCW:
		return ChiralCCW
	}
	return c
}

// implicitH stands for an atom's own hydrogen in a stereo reference order
const implicitH = -1

// Atom is a heavy atom with the properties the SMILES form can express
type Atom struct {
	Element  string
	Number   int
	Aromatic bool
	Charge   int
	Isotope  int
	HCount   int  // explicit hydrogens, meaningful when Bracket is set
	Bracket  bool // hydrogen count fixed by the source
	MapNum   int
	Chiral   Chirality
}

// Bond connects atoms A and B
type Bond struct {
	A, B  int
	Order BondOrder
}

// Other returns the atom at the opposite end of the bond
func (b Bond) Other(atom int) int {
	if b.A == atom {
		return b.B
	}
	return b.A
}

// Molecule is an undirected graph of atoms. Atom and bond indices are stable
// and reflect insertion order.
type Molecule struct {
	atoms  []Atom
	bonds  []Bond
	adj    [][]int       // atom -> bond indices, in insertion order
	stereo map[int][]int // chiral atom -> neighbor reference order
}

// NewMolecule creates an empty molecule
func NewMolecule() *Molecule {
	return &Molecule{}
}

// NumAtoms returns the number of heavy atoms
func (m *Molecule) NumAtoms() int {
	return len(m.atoms)
}

// NumBonds returns the number of bonds
func (m *Molecule) NumBonds() int {
	return len(m.bonds)
}

// Atom returns the atom at index i
func (m *Molecule) Atom(i int) Atom {
	return m.atoms[i]
}

// Bond returns the bond at index i
func (m *Molecule) Bond(i int) Bond {
	return m.bonds[i]
}

// AddAtom appends an atom and returns its index
func (m *Molecule) AddAtom(a Atom) int {
	m.atoms = append(m.atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.atoms) - 1
}

// AddBond connects two atoms. Self bonds and duplicate bonds are rejected.
func (m *Molecule) AddBond(a, b int, order BondOrder) error {
	if a == b {
		return fmt.Errorf("atom %d cannot bond to itself", a)
	}
	if a < 0 || b < 0 || a >= len(m.atoms) || b >= len(m.atoms) {
		return fmt.Errorf("bond %d-%d references a missing atom", a, b)
	}
	if _, ok := m.BondBetween(a, b); ok {
		return fmt.Errorf("atoms %d and %d are already bonded", a, b)
	}
	m.bonds = append(m.bonds, Bond{A: a, B: b, Order: order})
	idx := len(m.bonds) - 1
	m.adj[a] = append(m.adj[a], idx)
	m.adj[b] = append(m.adj[b], idx)
	return nil
}

// BondBetween returns the index of the bond joining a and b
func (m *Molecule) BondBetween(a, b int) (int, bool) {
	for _, bi := range m.adj[a] {
		if m.bonds[bi].Other(a) == b {
			return bi, true
		}
	}
	return -1, false
}

// BondsOf returns the bond indices incident to atom i
func (m *Molecule) BondsOf(i int) []int {
	return m.adj[i]
}

// Neighbors returns the atoms bonded to i in bond insertion order
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.bonds[bi].Other(i))
	}
	return out
}

// Degree returns the number of explicit neighbors
func (m *Molecule) Degree(i int) int {
	return len(m.adj[i])
}

// bondValence sums the valence contributions of atom i's bonds
func (m *Molecule) bondValence(i int) int {
	sum := 0
	for _, bi := range m.adj[i] {
		sum += m.bonds[bi].Order.valence()
	}
	if m.atoms[i].Aromatic {
		sum++
	}
	return sum
}

// defaultHydrogens returns the hydrogen count an unbracketed atom would get
func (m *Molecule) defaultHydrogens(i int) int {
	a := m.atoms[i]
	if a.Charge != 0 {
		return 0
	}
	vals, ok := defaultValences[a.Number]
	if !ok {
		return 0
	}
	used := m.bondValence(i)
	for _, v := range vals {
		if v >= used {
			return v - used
		}
	}
	return 0
}

// ImplicitHydrogens returns hydrogens derived from the default valence model
func (m *Molecule) ImplicitHydrogens(i int) int {
	if m.atoms[i].Bracket {
		return 0
	}
	return m.defaultHydrogens(i)
}

// TotalHydrogens returns explicit, implicit and hydrogen-atom neighbor counts
func (m *Molecule) TotalHydrogens(i int) int {
	h := m.atoms[i].HCount + m.ImplicitHydrogens(i)
	for _, n := range m.Neighbors(i) {
		if m.atoms[n].Number == 1 {
			h++
		}
	}
	return h
}

// Valence returns the total valence including hydrogens
func (m *Molecule) Valence(i int) int {
	return m.bondValence(i) + m.atoms[i].HCount + m.ImplicitHydrogens(i)
}

// Components returns the connected components, each sorted by atom index,
// ordered by their lowest atom index
func (m *Molecule) Components() [][]int {
	seen := make([]bool, len(m.atoms))
	var comps [][]int
	for start := range m.atoms {
		if seen[start] {
			continue
		}
		comp := []int{}
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			a := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, a)
			for _, n := range m.Neighbors(a) {
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	return comps
}

// RingBonds reports which bonds lie on a cycle
func (m *Molecule) RingBonds() []bool {
	ring := make([]bool, len(m.bonds))
	for bi, b := range m.bonds {
		ring[bi] = m.connectedWithout(b.A, b.B, bi)
	}
	return ring
}

// RingAtoms reports which atoms have at least one ring bond
func (m *Molecule) RingAtoms() []bool {
	atoms := make([]bool, len(m.atoms))
	for bi, in := range m.RingBonds() {
		if in {
			atoms[m.bonds[bi].A] = true
			atoms[m.bonds[bi].B] = true
		}
	}
	return atoms
}

func (m *Molecule) connectedWithout(from, to, skipBond int) bool {
	seen := make([]bool, len(m.atoms))
	stack := []int{from}
	seen[from] = true
	for len(stack) > 0 {
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, bi := range m.adj[a] {
			if bi == skipBond {
				continue
			}
			n := m.bonds[bi].Other(a)
			if n == to {
				return true
			}
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}

// Clone returns a deep copy
func (m *Molecule) Clone() *Molecule {
	c := &Molecule{
		atoms: append([]Atom(nil), m.atoms...),
		bonds: append([]Bond(nil), m.bonds...),
		adj:   make([][]int, len(m.adj)),
	}
	for i, a := range m.adj {
		c.adj[i] = append([]int(nil), a...)
	}
	for i, ref := range m.stereo {
		c.setStereo(i, m.atoms[i].Chiral, slices.Clone(ref))
	}
	return c
}

// StereoRef returns the neighbor order atom i's chirality is expressed
// against, with -1 standing for its implicit hydrogen. It is nil for atoms
// without a chirality mark.
func (m *Molecule) StereoRef(i int) []int {
	return m.stereo[i]
}

func (m *Molecule) setStereo(i int, c Chirality, ref []int) {
	if m.stereo == nil {
		m.stereo = map[int][]int{}
	}
	m.atoms[i].Chiral = c
	m.stereo[i] = ref
}

func (m *Molecule) clearStereo(i int) {
	m.atoms[i].Chiral = ChiralNone
	delete(m.stereo, i)
}

// checkStereo drops the chirality of atom i unless its reference order
// names exactly its three or four neighbors, counting at most one implicit
// hydrogen
func (m *Molecule) checkStereo(i int) {
	ref, ok := m.stereo[i]
	if !ok || m.atoms[i].Chiral == ChiralNone {
		m.clearStereo(i)
		return
	}
	want := m.Neighbors(i)
	switch m.atoms[i].HCount + m.ImplicitHydrogens(i) {
	case 0:
	case 1:
		want = append(want, implicitH)
	default:
		m.clearStereo(i)
		return
	}
	if len(want) < 3 || len(want) > 4 || len(ref) != len(want) {
		m.clearStereo(i)
		return
	}
	got := slices.Clone(ref)
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		m.clearStereo(i)
	}
}

// String returns the non-canonical SMILES form
func (m *Molecule) String() string {
	return WriteSMILES(m, false)
}

// Formula returns a Hill-ordered molecular formula, used in debug logging
func (m *Molecule) Formula() string {
	counts := map[string]int{}
	for i, a := range m.atoms {
		counts[a.Element]++
		if h := m.atoms[i].HCount + m.ImplicitHydrogens(i); h > 0 {
			counts["H"] += h
		}
	}
	var sb strings.Builder
	write := func(sym string) {
		n, ok := counts[sym]
		if !ok {
			return
		}
		sb.WriteString(sym)
		if n > 1 {
			fmt.Fprintf(&sb, "%d", n)
		}
		delete(counts, sym)
	}
	if _, ok := counts["C"]; ok {
		write("C")
		write("H")
	}
	rest := make([]string, 0, len(counts))
	for sym := range counts {
		rest = append(rest, sym)
	}
	slices.Sort(rest)
	for _, sym := range rest {
		write(sym)
	}
	return sb.String()
}
