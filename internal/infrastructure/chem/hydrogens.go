package chem

// foldHydrogens turns plain explicit hydrogen atoms into hydrogen counts on
// their heavy neighbor. Charged, isotopic and mapped hydrogens stay atoms,
// as do H2 and hydrogens with more than one bond. The input is returned
// unchanged when nothing folds.
func foldHydrogens(m *Molecule) *Molecule {
	fold := make([]bool, len(m.atoms))
	extra := make([]int, len(m.atoms))
	folded := false
	for i, a := range m.atoms {
		if a.Number != 1 || a.Charge != 0 || a.Isotope != 0 || a.MapNum != 0 || a.HCount != 0 {
			continue
		}
		if len(m.adj[i]) != 1 {
			continue
		}
		b := m.bonds[m.adj[i][0]]
		heavy := b.Other(i)
		if b.Order != BondSingle || m.atoms[heavy].Number <= 1 {
			continue
		}
		fold[i] = true
		extra[heavy]++
		folded = true
	}
	if !folded {
		return m
	}

	out := NewMolecule()
	index := make([]int, len(m.atoms))
	for i, a := range m.atoms {
		if fold[i] {
			continue
		}
		if extra[i] > 0 {
			// bond valence still counts the hydrogen atoms here
			a.HCount += m.ImplicitHydrogens(i) + extra[i]
			a.Bracket = true
		}
		index[i] = out.AddAtom(a)
	}
	for _, b := range m.bonds {
		if fold[b.A] || fold[b.B] {
			continue
		}
		_ = out.AddBond(index[b.A], index[b.B], b.Order)
	}

	for i, ref := range m.stereo {
		if fold[i] {
			continue
		}
		mapped := make([]int, len(ref))
		for k, n := range ref {
			if n == implicitH || fold[n] {
				mapped[k] = implicitH
				continue
			}
			mapped[k] = index[n]
		}
		out.setStereo(index[i], m.atoms[i].Chiral, mapped)
	}
	return out
}
