package chem

import (
	"fmt"
	"strings"
)

// Reaction is a compiled reaction SMARTS of the form reactants>>products.
// Each dot-separated reactant template matches one reactant molecule.
type Reaction struct {
	pattern   string
	reactants []*template
	products  []*template
}

// ParseReaction compiles a reaction SMARTS
func ParseReaction(pattern string) (*Reaction, error) {
	parts := strings.Split(pattern, ">")
	if len(parts) != 3 {
		return nil, &SyntaxError{Input: pattern, Msg: "reaction must have the form reactants>>products"}
	}
	r := &Reaction{pattern: pattern}
	var err error
	if r.reactants, err = parseTemplates(parts[0]); err != nil {
		return nil, fmt.Errorf("reactants: %w", err)
	}
	if r.products, err = parseTemplates(parts[2]); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func parseTemplates(side string) ([]*template, error) {
	if side == "" {
		return nil, &SyntaxError{Input: side, Msg: "no templates"}
	}
	var out []*template
	for _, frag := range strings.Split(side, ".") {
		t, err := parseSMARTS(frag)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *Reaction) validate() error {
	reactantMaps := map[int]bool{}
	for _, t := range r.reactants {
		for _, a := range t.atoms {
			if a.mapNum == 0 {
				continue
			}
			if reactantMaps[a.mapNum] {
				return fmt.Errorf("atom map %d used twice in reactants", a.mapNum)
			}
			reactantMaps[a.mapNum] = true
		}
	}
	productMaps := map[int]bool{}
	for _, t := range r.products {
		for _, a := range t.atoms {
			if a.mapNum > 0 && reactantMaps[a.mapNum] {
				if productMaps[a.mapNum] {
					return fmt.Errorf("atom map %d used twice in products", a.mapNum)
				}
				productMaps[a.mapNum] = true
				continue
			}
			if _, _, _, ok := a.expr.element(); !ok {
				return fmt.Errorf("unmapped product atom in %q must name an element", t.source)
			}
		}
	}
	return nil
}

// Pattern returns the SMARTS the reaction was compiled from
func (r *Reaction) Pattern() string {
	return r.pattern
}

// NumReactants returns the number of reactant templates
func (r *Reaction) NumReactants() int {
	return len(r.reactants)
}

// NumProducts returns the number of product templates
func (r *Reaction) NumProducts() int {
	return len(r.products)
}

// Run applies the reaction to one molecule per reactant template. Every
// combination of template matches yields one candidate, an ordered list of
// product molecules.
//
// Matches are unique by the set of reactant atoms they cover. A template
// that fits the same atoms in more than one order, such as a symmetric
// [C:1][C:2] on ethane, contributes one candidate for those atoms rather
// than one per ordering, so the count reflects distinct reaction sites.
func (r *Reaction) Run(reactants ...*Molecule) ([][]*Molecule, error) {
	if len(reactants) != len(r.reactants) {
		return nil, fmt.Errorf("reaction needs %d reactants, got %d", len(r.reactants), len(reactants))
	}
	perTemplate := make([][][]int, len(r.reactants))
	for i, t := range r.reactants {
		perTemplate[i] = t.matches(reactants[i])
		if len(perTemplate[i]) == 0 {
			return nil, nil
		}
	}

	var candidates [][]*Molecule
	combo := make([][]int, len(r.reactants))
	var walk func(i int) error
	walk = func(i int) error {
		if i == len(perTemplate) {
			products, err := r.build(reactants, combo)
			if err != nil {
				return err
			}
			candidates = append(candidates, products)
			return nil
		}
		for _, m := range perTemplate[i] {
			combo[i] = m
			if err := walk(i + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return nil, err
	}
	return candidates, nil
}

type origin struct {
	reactant, atom int
}

// productBuilder assembles the products of one match combination
type productBuilder struct {
	reactants []*Molecule
	matched   []map[int]bool // per reactant: molecule atoms covered by the template
	covered   []map[int]bool // per reactant: molecule bonds covered by the template
	claimed   map[origin]bool

	mol   *Molecule
	index map[origin]int
}

func (r *Reaction) build(reactants []*Molecule, combo [][]int) ([]*Molecule, error) {
	b := &productBuilder{
		reactants: reactants,
		matched:   make([]map[int]bool, len(reactants)),
		covered:   make([]map[int]bool, len(reactants)),
		claimed:   map[origin]bool{},
	}
	mapped := map[int]origin{}
	for i, t := range r.reactants {
		b.matched[i] = map[int]bool{}
		b.covered[i] = map[int]bool{}
		for ta, a := range combo[i] {
			b.matched[i][a] = true
			if n := t.atoms[ta].mapNum; n > 0 {
				mapped[n] = origin{reactant: i, atom: a}
			}
		}
		for _, tb := range t.bonds {
			if bi, ok := reactants[i].BondBetween(combo[i][tb.a], combo[i][tb.b]); ok {
				b.covered[i][bi] = true
			}
		}
	}

	products := make([]*Molecule, 0, len(r.products))
	for _, pt := range r.products {
		p, err := b.product(pt, mapped)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (b *productBuilder) product(pt *template, mapped map[int]origin) (*Molecule, error) {
	b.mol = NewMolecule()
	b.index = map[origin]int{}
	origins := make([]*origin, len(pt.atoms))

	for pa, ta := range pt.atoms {
		o, ok := mapped[ta.mapNum]
		if ta.mapNum > 0 && ok {
			atom := b.reactants[o.reactant].atoms[o.atom]
			atom.MapNum = 0
			if sym, num, arom, ok := ta.expr.element(); ok && num != atom.Number {
				atom.Element, atom.Number, atom.Aromatic = sym, num, arom
			}
			if c, ok := ta.expr.charge(); ok {
				atom.Charge = c
			}
			b.index[o] = b.mol.AddAtom(atom)
			b.claimed[o] = true
			origins[pa] = &o
			continue
		}
		sym, num, arom, _ := ta.expr.element()
		atom := Atom{Element: sym, Number: num, Aromatic: arom}
		if c, ok := ta.expr.charge(); ok {
			atom.Charge = c
		}
		b.mol.AddAtom(atom)
	}

	for _, tb := range pt.bonds {
		order := tb.query.order(b.mol.atoms[tb.a].Aromatic && b.mol.atoms[tb.b].Aromatic)
		if tb.query == bondQAny {
			if oa, ob := origins[tb.a], origins[tb.b]; oa != nil && ob != nil && oa.reactant == ob.reactant {
				if bi, ok := b.reactants[oa.reactant].BondBetween(oa.atom, ob.atom); ok {
					order = b.reactants[oa.reactant].bonds[bi].Order
				}
			}
		}
		if err := b.mol.AddBond(tb.a, tb.b, order); err != nil {
			return nil, fmt.Errorf("product template %q: %w", pt.source, err)
		}
	}

	for _, o := range origins {
		if o != nil {
			b.carry(*o)
		}
	}

	for pa, o := range origins {
		if o == nil {
			continue
		}
		src := b.reactants[o.reactant]
		atom := &b.mol.atoms[pa]
		if !atom.Bracket {
			continue
		}
		delta := b.mol.bondValence(pa) - src.bondValence(o.atom)
		atom.HCount = max(0, atom.HCount-delta)
	}
	b.carryStereo()
	return b.mol, nil
}

// carryStereo copies reactant chirality onto product atoms whose neighbors
// all came across with them. Centers that gained or lost a neighbor lose
// their mark.
func (b *productBuilder) carryStereo() {
	for o, pi := range b.index {
		src := b.reactants[o.reactant]
		chiral := src.atoms[o.atom].Chiral
		if chiral == ChiralNone {
			continue
		}
		ref := src.stereo[o.atom]
		mapped := make([]int, len(ref))
		complete := ref != nil
		for k, n := range ref {
			if n == implicitH {
				mapped[k] = implicitH
				continue
			}
			j, ok := b.index[origin{reactant: o.reactant, atom: n}]
			if !ok {
				complete = false
				break
			}
			mapped[k] = j
		}
		if !complete {
			b.mol.clearStereo(pi)
			continue
		}
		b.mol.setStereo(pi, chiral, mapped)
		b.mol.checkStereo(pi)
	}
}

// carry copies the unmatched part of a reactant reachable from o
func (b *productBuilder) carry(o origin) {
	src := b.reactants[o.reactant]
	for _, bi := range src.adj[o.atom] {
		n := origin{reactant: o.reactant, atom: src.bonds[bi].Other(o.atom)}
		order := src.bonds[bi].Order

		if b.matched[o.reactant][n.atom] {
			if b.covered[o.reactant][bi] {
				continue
			}
			if j, ok := b.index[n]; ok {
				b.bondOnce(b.index[o], j, order)
			}
			continue
		}
		if j, ok := b.index[n]; ok {
			b.bondOnce(b.index[o], j, order)
			continue
		}
		if b.claimed[n] {
			continue
		}
		b.claimed[n] = true
		atom := src.atoms[n.atom]
		atom.MapNum = 0
		b.index[n] = b.mol.AddAtom(atom)
		b.bondOnce(b.index[o], b.index[n], order)
		b.carry(n)
	}
}

func (b *productBuilder) bondOnce(a, c int, order BondOrder) {
	if _, ok := b.mol.BondBetween(a, c); !ok {
		_ = b.mol.AddBond(a, c, order)
	}
}
