package chem

import (
	"fmt"
	"strconv"
	"strings"
)

// primitive kinds understood inside SMARTS atom expressions
type primKind int

const (
	primAny primKind = iota
	primElement
	primAromatic
	primAliphatic
	primDegree
	primTotalH
	primImplicitH
	primConnectivity
	primValence
	primHeteroNeighbors
	primRing
	primCharge
)

// atomExpr is a node of a SMARTS atom expression tree
type atomExpr struct {
	op   byte // 0 primitive, '!' not, '&' and, ',' or
	kids []*atomExpr

	kind     primKind
	number   int  // atomic number, count or charge
	aromatic int8 // for primElement: -1 aliphatic, 1 aromatic, 0 either
}

func (e *atomExpr) match(m *Molecule, i int, ring []bool) bool {
	switch e.op {
	case '!':
		return !e.kids[0].match(m, i, ring)
	case '&':
		for _, k := range e.kids {
			if !k.match(m, i, ring) {
				return false
			}
		}
		return true
	case ',':
		for _, k := range e.kids {
			if k.match(m, i, ring) {
				return true
			}
		}
		return false
	}

	a := m.atoms[i]
	switch e.kind {
	case primAny:
		return true
	case primElement:
		if a.Number != e.number {
			return false
		}
		return e.aromatic == 0 || (e.aromatic > 0) == a.Aromatic
	case primAromatic:
		return a.Aromatic
	case primAliphatic:
		return !a.Aromatic && a.Number != 0
	case primDegree:
		return m.Degree(i) == e.number
	case primTotalH:
		return m.TotalHydrogens(i) == e.number
	case primImplicitH:
		return m.ImplicitHydrogens(i) == e.number
	case primConnectivity:
		return m.Degree(i)+a.HCount+m.ImplicitHydrogens(i) == e.number
	case primValence:
		return m.Valence(i) == e.number
	case primHeteroNeighbors:
		count := 0
		for _, n := range m.Neighbors(i) {
			if isHeteroatom(m.atoms[n].Number) {
				count++
			}
		}
		return count == e.number
	case primRing:
		if e.number == 0 {
			return !ring[i]
		}
		return ring[i]
	case primCharge:
		return a.Charge == e.number
	}
	return false
}

// element returns the single element an expression pins, used when a
// product template creates a new atom
func (e *atomExpr) element() (string, int, bool, bool) {
	switch e.op {
	case 0:
		if e.kind == primElement {
			for sym, num := range atomicNumbers {
				if num == e.number {
					return sym, num, e.aromatic > 0, true
				}
			}
		}
	case '&':
		for _, k := range e.kids {
			if sym, num, arom, ok := k.element(); ok {
				return sym, num, arom, true
			}
		}
	}
	return "", 0, false, false
}

// charge returns the formal charge an expression pins, if any
func (e *atomExpr) charge() (int, bool) {
	switch e.op {
	case 0:
		if e.kind == primCharge {
			return e.number, true
		}
	case '&':
		for _, k := range e.kids {
			if c, ok := k.charge(); ok {
				return c, true
			}
		}
	}
	return 0, false
}

// bondQuery matches a molecule bond
type bondQuery int

const (
	bondDefault bondQuery = iota // single or aromatic
	bondQSingle
	bondQDouble
	bondQTriple
	bondQAromatic
	bondQAny
)

func (q bondQuery) match(o BondOrder) bool {
	switch q {
	case bondQSingle:
		return o == BondSingle
	case bondQDouble:
		return o == BondDouble
	case bondQTriple:
		return o == BondTriple
	case bondQAromatic:
		return o == BondAromatic
	case bondQAny:
		return true
	default:
		return o == BondSingle || o == BondAromatic
	}
}

// order is the bond a product template creates
func (q bondQuery) order(bothAromatic bool) BondOrder {
	switch q {
	case bondQDouble:
		return BondDouble
	case bondQTriple:
		return BondTriple
	case bondQAromatic:
		return BondAromatic
	case bondQSingle:
		return BondSingle
	default:
		if bothAromatic {
			return BondAromatic
		}
		return BondSingle
	}
}

type templateAtom struct {
	expr   *atomExpr
	mapNum int
}

type templateBond struct {
	a, b  int
	query bondQuery
}

// template is a parsed SMARTS fragment
type template struct {
	source string
	atoms  []templateAtom
	bonds  []templateBond
	adj    [][]int // atom -> bond indices
}

func (t *template) addBond(a, b int, q bondQuery) {
	t.bonds = append(t.bonds, templateBond{a: a, b: b, query: q})
	idx := len(t.bonds) - 1
	t.adj[a] = append(t.adj[a], idx)
	t.adj[b] = append(t.adj[b], idx)
}

func (t *template) other(bi, atom int) int {
	if t.bonds[bi].a == atom {
		return t.bonds[bi].b
	}
	return t.bonds[bi].a
}

type smartsParser struct {
	in      string
	pos     int
	tpl     *template
	prev    int
	pending bondQuery
	hasBond bool
	branch  []int
	rings   map[int]int
	ringQ   map[int]bondQuery
}

// parseSMARTS parses a single connected-or-dotted SMARTS template
func parseSMARTS(s string) (*template, error) {
	if s == "" {
		return nil, &SyntaxError{Input: s, Msg: "empty SMARTS"}
	}
	p := &smartsParser{in: s, tpl: &template{source: s}, prev: -1, rings: map[int]int{}, ringQ: map[int]bondQuery{}}
	for p.pos < len(p.in) {
		if err := p.step(); err != nil {
			return nil, err
		}
	}
	if p.hasBond || len(p.branch) > 0 || len(p.rings) > 0 {
		return nil, p.fail("incomplete SMARTS")
	}
	return p.tpl, nil
}

func (p *smartsParser) fail(msg string) error {
	return &SyntaxError{Input: p.in, Pos: p.pos, Msg: msg}
}

func (p *smartsParser) step() error {
	c := p.in[p.pos]
	switch {
	case c == '(':
		if p.prev < 0 {
			return p.fail("branch without a preceding atom")
		}
		p.branch = append(p.branch, p.prev)
		p.pos++
	case c == ')':
		if len(p.branch) == 0 || p.hasBond {
			return p.fail("unbalanced ')'")
		}
		p.prev = p.branch[len(p.branch)-1]
		p.branch = p.branch[:len(p.branch)-1]
		p.pos++
	case c == '.':
		if p.hasBond {
			return p.fail("bond without a following atom")
		}
		p.prev = -1
		p.pos++
	case strings.IndexByte("-=#:~/\\", c) >= 0:
		if p.prev < 0 || p.hasBond {
			return p.fail("unexpected bond symbol")
		}
		p.pending, p.hasBond = bondQueryFromSymbol(c), true
		p.pos++
	case isDigit(c):
		if p.prev < 0 {
			return p.fail("ring bond without a preceding atom")
		}
		digit := int(c - '0')
		p.pos++
		if open, ok := p.rings[digit]; ok {
			q := p.ringQ[digit]
			if p.hasBond {
				q = p.pending
			}
			p.tpl.addBond(open, p.prev, q)
			delete(p.rings, digit)
			delete(p.ringQ, digit)
		} else {
			p.rings[digit] = p.prev
			p.ringQ[digit] = p.pending
		}
		p.pending, p.hasBond = bondDefault, false
	case c == '[':
		end := strings.IndexByte(p.in[p.pos:], ']')
		if end < 0 {
			return p.fail("unterminated bracket atom")
		}
		body := p.in[p.pos+1 : p.pos+end]
		atom, err := parseBracketQuery(body)
		if err != nil {
			return p.fail(fmt.Sprintf("bad atom query %q: %v", body, err))
		}
		p.pos += end + 1
		p.add(atom)
	default:
		expr, n, err := parseElementPrimitive(p.in[p.pos:], false)
		if err != nil {
			return p.fail(err.Error())
		}
		p.pos += n
		p.add(templateAtom{expr: expr})
	}
	return nil
}

func (p *smartsParser) add(a templateAtom) {
	p.tpl.atoms = append(p.tpl.atoms, a)
	p.tpl.adj = append(p.tpl.adj, nil)
	idx := len(p.tpl.atoms) - 1
	if p.prev >= 0 {
		p.tpl.addBond(p.prev, idx, p.pending)
	}
	p.prev = idx
	p.pending, p.hasBond = bondDefault, false
}

func bondQueryFromSymbol(c byte) bondQuery {
	switch c {
	case '-', '/', '\\':
		return bondQSingle
	case '=':
		return bondQDouble
	case '#':
		return bondQTriple
	case ':':
		return bondQAromatic
	default:
		return bondQAny
	}
}

// parseBracketQuery parses the body of [...], including a trailing :map
func parseBracketQuery(body string) (templateAtom, error) {
	var atom templateAtom
	if i := strings.LastIndexByte(body, ':'); i >= 0 {
		n, err := strconv.Atoi(body[i+1:])
		if err != nil {
			return atom, fmt.Errorf("atom map must be numeric")
		}
		atom.mapNum = n
		body = body[:i]
	}
	if body == "H" {
		atom.expr = &atomExpr{kind: primElement, number: 1}
		return atom, nil
	}
	qp := &queryParser{in: body}
	expr, err := qp.lowAnd()
	if err != nil {
		return atom, err
	}
	if qp.pos != len(qp.in) {
		return atom, fmt.Errorf("unexpected %q", qp.in[qp.pos:])
	}
	atom.expr = expr
	return atom, nil
}

// queryParser implements SMARTS operator precedence: ';' < ',' < '&'/implicit
type queryParser struct {
	in  string
	pos int
}

func (q *queryParser) peek() byte {
	if q.pos >= len(q.in) {
		return 0
	}
	return q.in[q.pos]
}

func (q *queryParser) lowAnd() (*atomExpr, error) {
	return q.binary(';', '&', q.or)
}

func (q *queryParser) or() (*atomExpr, error) {
	return q.binary(',', ',', q.highAnd)
}

func (q *queryParser) binary(sep, op byte, next func() (*atomExpr, error)) (*atomExpr, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	kids := []*atomExpr{first}
	for q.peek() == sep {
		q.pos++
		k, err := next()
		if err != nil {
			return nil, err
		}
		kids = append(kids, k)
	}
	if len(kids) == 1 {
		return first, nil
	}
	return &atomExpr{op: op, kids: kids}, nil
}

func (q *queryParser) highAnd() (*atomExpr, error) {
	var kids []*atomExpr
	for {
		c := q.peek()
		if c == 0 || c == ';' || c == ',' {
			break
		}
		if c == '&' {
			q.pos++
			continue
		}
		k, err := q.unary()
		if err != nil {
			return nil, err
		}
		kids = append(kids, k)
	}
	switch len(kids) {
	case 0:
		return nil, fmt.Errorf("empty atom expression")
	case 1:
		return kids[0], nil
	}
	return &atomExpr{op: '&', kids: kids}, nil
}

func (q *queryParser) unary() (*atomExpr, error) {
	if q.peek() == '!' {
		q.pos++
		k, err := q.unary()
		if err != nil {
			return nil, err
		}
		return &atomExpr{op: '!', kids: []*atomExpr{k}}, nil
	}
	return q.primitive()
}

func (q *queryParser) count(def int) int {
	start := q.pos
	for q.pos < len(q.in) && isDigit(q.in[q.pos]) {
		q.pos++
	}
	if start == q.pos {
		return def
	}
	n, _ := strconv.Atoi(q.in[start:q.pos])
	return n
}

func (q *queryParser) primitive() (*atomExpr, error) {
	c := q.peek()
	counted := func(kind primKind, def int) (*atomExpr, error) {
		q.pos++
		return &atomExpr{kind: kind, number: q.count(def)}, nil
	}
	switch c {
	case '*':
		q.pos++
		return &atomExpr{kind: primAny}, nil
	case 'a':
		if q.pos+1 < len(q.in) && q.in[q.pos+1] == 's' {
			break
		}
		q.pos++
		return &atomExpr{kind: primAromatic}, nil
	case 'A':
		if q.pos+1 < len(q.in) && atomicNumbers[q.in[q.pos:q.pos+2]] != 0 {
			break
		}
		q.pos++
		return &atomExpr{kind: primAliphatic}, nil
	case '#':
		q.pos++
		n := q.count(-1)
		if n < 0 {
			return nil, fmt.Errorf("'#' must be followed by an atomic number")
		}
		return &atomExpr{kind: primElement, number: n}, nil
	case 'D':
		return counted(primDegree, 1)
	case 'H':
		return counted(primTotalH, 1)
	case 'h':
		return counted(primImplicitH, 1)
	case 'X':
		return counted(primConnectivity, 1)
	case 'v':
		return counted(primValence, 1)
	case 'z':
		return counted(primHeteroNeighbors, 1)
	case 'R':
		q.pos++
		n := q.count(-1)
		if n == 0 {
			return &atomExpr{kind: primRing, number: 0}, nil
		}
		return &atomExpr{kind: primRing, number: 1}, nil
	case '+', '-':
		sign := 1
		if c == '-' {
			sign = -1
		}
		q.pos++
		n := q.count(-1)
		if n < 0 {
			n = 1
			for q.peek() == c {
				n++
				q.pos++
			}
		}
		return &atomExpr{kind: primCharge, number: sign * n}, nil
	}
	expr, n, err := parseElementPrimitive(q.in[q.pos:], true)
	if err != nil {
		return nil, err
	}
	q.pos += n
	return expr, nil
}

// parseElementPrimitive reads an element symbol: uppercase for aliphatic,
// lowercase for aromatic, '*' for any. Outside brackets only Cl and Br are
// two-letter symbols.
func parseElementPrimitive(s string, bracket bool) (*atomExpr, int, error) {
	if s == "" {
		return nil, 0, fmt.Errorf("missing atom")
	}
	if s[0] == '*' {
		return &atomExpr{kind: primAny}, 1, nil
	}
	if len(s) >= 2 {
		if el, ok := aromaticSymbols[s[:2]]; ok && bracket {
			return &atomExpr{kind: primElement, number: atomicNumbers[el], aromatic: 1}, 2, nil
		}
		if num, ok := atomicNumbers[s[:2]]; ok && (bracket || s[:2] == "Cl" || s[:2] == "Br") {
			return &atomExpr{kind: primElement, number: num, aromatic: -1}, 2, nil
		}
	}
	if el, ok := aromaticSymbols[s[:1]]; ok {
		return &atomExpr{kind: primElement, number: atomicNumbers[el], aromatic: 1}, 1, nil
	}
	if num, ok := atomicNumbers[s[:1]]; ok {
		return &atomExpr{kind: primElement, number: num, aromatic: -1}, 1, nil
	}
	return nil, 0, fmt.Errorf("unknown element %q", s[:1])
}
