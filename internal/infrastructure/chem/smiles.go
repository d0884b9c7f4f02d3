package chem

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/amidelab/enumerator/internal/domain"
)

// ErrSyntax is wrapped by every SMILES and SMARTS syntax error
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the position of a malformed character
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d in %q", e.Msg, e.Pos, e.Input)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// UnsupportedError reports well-formed SMILES using a feature the molecule
// model cannot carry
type UnsupportedError struct {
	Input   string
	Pos     int
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported (position %d in %q)", e.Feature, e.Pos, e.Input)
}

func (e *UnsupportedError) Unwrap() error {
	return domain.ErrUnsupported
}

type ringOpening struct {
	atom  int
	order BondOrder // 0 when unspecified
	slot  int       // position of the partner in the opening atom's order
}

// smilesParser holds the state of one ParseSMILES call
type smilesParser struct {
	in      string
	pos     int
	mol     *Molecule
	prev    int
	pending BondOrder
	branch  []int
	rings   map[int]ringOpening
	order   [][]int // atom -> neighbors in the order they are written
}

// ParseSMILES builds a molecule from a SMILES string.
//
// Plain explicit hydrogens such as [H] are folded into the hydrogen count of
// their neighbor. Six-membered carbon and nitrogen rings written in Kekulé
// form are stored as aromatic. Tetrahedral marks (@, @@, @TH1, @TH2) are
// kept; double bond marks (/ and \) and the other chirality classes fail
// with an *UnsupportedError.
func ParseSMILES(s string) (*Molecule, error) {
	if s == "" {
		return nil, &SyntaxError{Input: s, Msg: "empty SMILES"}
	}
	p := &smilesParser{in: s, mol: NewMolecule(), prev: -1, rings: map[int]ringOpening{}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	for i, a := range p.mol.atoms {
		if a.Chiral != ChiralNone {
			p.mol.setStereo(i, a.Chiral, p.order[i])
		}
	}

	mol := foldHydrogens(p.mol)
	for i := range mol.atoms {
		if mol.atoms[i].Chiral != ChiralNone {
			mol.checkStereo(i)
		}
	}
	perceiveAromaticity(mol)
	return mol, nil
}

func (p *smilesParser) fail(msg string) error {
	return &SyntaxError{Input: p.in, Pos: p.pos, Msg: msg}
}

func (p *smilesParser) unsupported(pos int, feature string) error {
	return &UnsupportedError{Input: p.in, Pos: pos, Feature: feature}
}

func (p *smilesParser) parse() error {
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch without a preceding atom")
			}
			p.branch = append(p.branch, p.prev)
			p.pos++
		case c == ')':
			if len(p.branch) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.pending != 0 {
				return p.fail("bond without a following atom")
			}
			p.prev = p.branch[len(p.branch)-1]
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++
		case c == '.':
			if p.pending != 0 {
				return p.fail("bond without a following atom")
			}
			p.prev = -1
			p.pos++
		case c == '/' || c == '\\':
			return p.unsupported(p.pos, "double bond stereochemistry")
		case c == '-' || c == '=' || c == '#' || c == ':':
			if p.prev < 0 || p.pending != 0 {
				return p.fail("unexpected bond symbol")
			}
			p.pending = bondFromSymbol(c)
			p.pos++
		case c >= '0' && c <= '9' || c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			atom, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.addAtom(atom); err != nil {
				return err
			}
		default:
			atom, err := p.organicAtom()
			if err != nil {
				return err
			}
			if err := p.addAtom(atom); err != nil {
				return err
			}
		}
	}
	if p.pending != 0 {
		return p.fail("bond without a following atom")
	}
	if len(p.branch) > 0 {
		return p.fail("unclosed branch")
	}
	if len(p.rings) > 0 {
		return p.fail("unclosed ring bond")
	}
	if p.mol.NumAtoms() == 0 {
		return p.fail("no atoms")
	}
	return nil
}

func bondFromSymbol(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

// defaultOrder is the order of an unwritten bond between two atoms
func (p *smilesParser) defaultOrder(a, b int) BondOrder {
	if p.mol.atoms[a].Aromatic && p.mol.atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *smilesParser) addAtom(a Atom) error {
	idx := p.mol.AddAtom(a)
	p.order = append(p.order, nil)
	if p.prev >= 0 {
		order := p.pending
		if order == 0 {
			order = p.defaultOrder(p.prev, idx)
		}
		if err := p.mol.AddBond(p.prev, idx, order); err != nil {
			return p.fail(err.Error())
		}
		p.order[p.prev] = append(p.order[p.prev], idx)
		p.order[idx] = append(p.order[idx], p.prev)
	}
	// a bracket hydrogen follows the preceding atom
	if a.HCount > 0 {
		p.order[idx] = append(p.order[idx], implicitH)
	}
	p.prev = idx
	p.pending = 0
	return nil
}

func (p *smilesParser) ringClosure() error {
	if p.prev < 0 {
		return p.fail("ring bond without a preceding atom")
	}
	var digit int
	if p.in[p.pos] == '%' {
		if p.pos+2 >= len(p.in) || !isDigit(p.in[p.pos+1]) || !isDigit(p.in[p.pos+2]) {
			return p.fail("'%' must be followed by two digits")
		}
		digit, _ = strconv.Atoi(p.in[p.pos+1 : p.pos+3])
		p.pos += 3
	} else {
		digit = int(p.in[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[digit]
	if !ok {
		// the partner is filled in when the ring closes
		p.rings[digit] = ringOpening{atom: p.prev, order: p.pending, slot: len(p.order[p.prev])}
		p.order[p.prev] = append(p.order[p.prev], implicitH)
		p.pending = 0
		return nil
	}
	delete(p.rings, digit)

	order := p.pending
	if order == 0 {
		order = open.order
	}
	if order == 0 {
		order = p.defaultOrder(open.atom, p.prev)
	}
	p.pending = 0
	if err := p.mol.AddBond(open.atom, p.prev, order); err != nil {
		return p.fail(err.Error())
	}
	p.order[open.atom][open.slot] = p.prev
	p.order[p.prev] = append(p.order[p.prev], open.atom)
	return nil
}

func (p *smilesParser) organicAtom() (Atom, error) {
	c := p.in[p.pos]
	if c == '*' {
		p.pos++
		return Atom{Element: "*"}, nil
	}
	if p.pos+1 < len(p.in) {
		two := p.in[p.pos : p.pos+2]
		if two == "Cl" || two == "Br" {
			p.pos += 2
			return Atom{Element: two, Number: atomicNumbers[two]}, nil
		}
	}
	sym := string(c)
	if organicSubset[sym] {
		p.pos++
		return Atom{Element: sym, Number: atomicNumbers[sym]}, nil
	}
	if el, ok := aromaticSymbols[sym]; ok {
		p.pos++
		return Atom{Element: el, Number: atomicNumbers[el], Aromatic: true}, nil
	}
	return Atom{}, p.fail(fmt.Sprintf("unexpected character %q", c))
}

// bracketAtom parses [isotope symbol chirality hcount charge :class]
func (p *smilesParser) bracketAtom() (Atom, error) {
	start := p.pos
	p.pos++ // '['
	atom := Atom{Bracket: true}

	atom.Isotope = p.number(0)

	switch {
	case p.pos >= len(p.in):
		return atom, p.fail("unterminated bracket atom")
	case p.in[p.pos] == '*':
		atom.Element = "*"
		p.pos++
	default:
		el, aromatic, ok := p.bracketSymbol()
		if !ok {
			return atom, p.fail("unknown element")
		}
		atom.Element, atom.Aromatic, atom.Number = el, aromatic, atomicNumbers[el]
	}

	if p.pos < len(p.in) && p.in[p.pos] == '@' {
		chiral, err := p.chirality()
		if err != nil {
			return atom, err
		}
		atom.Chiral = chiral
	}

	if p.pos < len(p.in) && p.in[p.pos] == 'H' {
		p.pos++
		atom.HCount = p.number(1)
	}

	if p.pos < len(p.in) && (p.in[p.pos] == '+' || p.in[p.pos] == '-') {
		sign := 1
		if p.in[p.pos] == '-' {
			sign = -1
		}
		sym := p.in[p.pos]
		p.pos++
		n := 1
		if p.pos < len(p.in) && isDigit(p.in[p.pos]) {
			n = p.number(1)
		} else {
			for p.pos < len(p.in) && p.in[p.pos] == sym {
				n++
				p.pos++
			}
		}
		atom.Charge = sign * n
	}

	if p.pos < len(p.in) && p.in[p.pos] == ':' {
		p.pos++
		if p.pos >= len(p.in) || !isDigit(p.in[p.pos]) {
			return atom, p.fail("atom class must be numeric")
		}
		atom.MapNum = p.number(0)
	}

	if p.pos >= len(p.in) || p.in[p.pos] != ']' {
		p.pos = start
		return atom, p.fail("malformed bracket atom")
	}
	p.pos++
	return atom, nil
}

// chirality reads @, @@, @TH1 or @TH2
func (p *smilesParser) chirality() (Chirality, error) {
	start := p.pos
	p.pos++ // '@'
	if p.pos < len(p.in) && p.in[p.pos] == '@' {
		p.pos++
		return ChiralCW, nil
	}
	rest := p.in[p.pos:]
	if len(rest) < 2 {
		return ChiralCCW, nil
	}
	switch rest[:2] {
	case "TH":
		p.pos += 2
		switch p.number(0) {
		case 1:
			return ChiralCCW, nil
		case 2:
			return ChiralCW, nil
		}
		return ChiralNone, p.fail("tetrahedral class must be TH1 or TH2")
	case "AL", "SP", "TB", "OH":
		return ChiralNone, p.unsupported(start, "non-tetrahedral stereochemistry")
	}
	return ChiralCCW, nil
}

func (p *smilesParser) bracketSymbol() (string, bool, bool) {
	rest := p.in[p.pos:]
	if len(rest) >= 2 {
		if el, ok := aromaticSymbols[rest[:2]]; ok {
			p.pos += 2
			return el, true, true
		}
		if _, ok := atomicNumbers[rest[:2]]; ok && rest[0] >= 'A' && rest[0] <= 'Z' {
			p.pos += 2
			return rest[:2], false, true
		}
	}
	if len(rest) >= 1 {
		if el, ok := aromaticSymbols[rest[:1]]; ok {
			p.pos++
			return el, true, true
		}
		if _, ok := atomicNumbers[rest[:1]]; ok {
			p.pos++
			return rest[:1], false, true
		}
	}
	return "", false, false
}

// number reads an unsigned decimal, returning def when none is present
func (p *smilesParser) number(def int) int {
	start := p.pos
	for p.pos < len(p.in) && isDigit(p.in[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return def
	}
	n, _ := strconv.Atoi(p.in[start:p.pos])
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
