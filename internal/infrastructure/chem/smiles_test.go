package chem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amidelab/enumerator/internal/domain"
)

func TestParseSMILES(t *testing.T) {
	tests := []struct {
		name      string
		smiles    string
		wantAtoms int
		wantBonds int
	}{
		{"methane", "C", 1, 0},
		{"acetic acid", "OC(=O)C", 4, 3},
		{"ethylamine", "NCC", 3, 2},
		{"benzene", "c1ccccc1", 6, 6},
		{"chlorobromomethane", "ClCBr", 3, 2},
		{"salt", "[Na+].[Cl-]", 2, 0},
		{"pyrrole", "[nH]1cccc1", 5, 5},
		{"two digit ring", "C%10CCC%10", 4, 4},
		{"chiral bracket", "N[C@@H](C)C(=O)O", 6, 5},
		{"explicit hydrogen folds", "[H]OC(=O)C", 4, 3},
		{"deuterium stays an atom", "[2H]OC(=O)C", 5, 4},
		{"kekule benzene", "C1=CC=CC=C1", 6, 6},
		{"isotope", "[13CH4]", 1, 0},
		{"triple bond", "C#N", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAtoms, mol.NumAtoms())
			assert.Equal(t, tt.wantBonds, mol.NumBonds())
		})
	}
}

func TestParseSMILES_Errors(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
	}{
		{"empty", ""},
		{"unknown character", "CQC"},
		{"unbalanced close", "CC)C"},
		{"unclosed branch", "CC(C"},
		{"unclosed ring", "C1CC"},
		{"dangling bond", "CC="},
		{"leading bond", "=CC"},
		{"unterminated bracket", "[CH4"},
		{"unknown bracket element", "[Xx]"},
		{"branch first", "(C)C"},
		{"self ring bond", "C11"},
		{"bad tetrahedral class", "N[C@TH3H](C)CC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			assert.Nil(t, mol)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax), "error %v should wrap ErrSyntax", err)
		})
	}
}

func TestParseSMILES_UnsupportedStereo(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
	}{
		{"trans double bond", "F/C=C/F"},
		{"cis double bond", "F/C=C\\F"},
		{"allene class", "C[C@AL1H]=C=CC"},
		{"square planar class", "N[C@SP1H](C)CC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			assert.Nil(t, mol)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnsupported)
			assert.NotErrorIs(t, err, ErrSyntax)
			assert.Contains(t, err.Error(), "stereochemistry is not supported")

			var unsupported *UnsupportedError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, tt.smiles, unsupported.Input)
		})
	}
}

func TestParseSMILES_Chirality(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		atom   int
		want   Chirality
		ref    []int
	}{
		{"anticlockwise", "N[C@H](C)CC", 1, ChiralCCW, []int{0, implicitH, 2, 3}},
		{"clockwise", "N[C@@H](C)CC", 1, ChiralCW, []int{0, implicitH, 2, 3}},
		{"tetrahedral class", "N[C@TH2H](C)CC", 1, ChiralCW, []int{0, implicitH, 2, 3}},
		{"first atom", "[C@@H](N)(C)CC", 0, ChiralCW, []int{implicitH, 1, 2, 3}},
		{"ring closure precedes branch", "C[C@@H]1CCCN1", 1, ChiralCW, []int{0, implicitH, 5, 2}},
		{"explicit hydrogen neighbor", "N[C@@]([H])(C)CC", 1, ChiralCW, []int{0, implicitH, 2, 3}},
		{"too few neighbors", "C[C@H]", 1, ChiralNone, nil},
		{"two hydrogens", "N[C@H2]C", 1, ChiralNone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mol.Atom(tt.atom).Chiral)
			assert.Equal(t, tt.ref, mol.StereoRef(tt.atom))
		})
	}
}

func TestParseSMILES_FoldsExplicitHydrogens(t *testing.T) {
	mol, err := ParseSMILES("[H]N([H])CC")
	require.NoError(t, err)
	assert.Equal(t, 3, mol.NumAtoms())
	assert.Equal(t, 1, mol.Degree(0))
	assert.Equal(t, 2, mol.TotalHydrogens(0))
	assert.Equal(t, "NCC", WriteSMILES(mol, false))

	mol, err = ParseSMILES("NC([H])([H])C")
	require.NoError(t, err)
	assert.Equal(t, 3, mol.NumAtoms())
	assert.Equal(t, 2, mol.TotalHydrogens(1))
	assert.Equal(t, "NCC", WriteSMILES(mol, false))

	mol, err = ParseSMILES("[H]c1ccccc1")
	require.NoError(t, err)
	assert.Equal(t, 6, mol.NumAtoms())
	assert.Equal(t, "c1ccccc1", WriteSMILES(mol, false))

	for _, kept := range []string{"[H][H]", "[2H]C", "[H+]"} {
		mol, err := ParseSMILES(kept)
		require.NoError(t, err)
		assert.Equal(t, kept, WriteSMILES(mol, false), "%s keeps its hydrogen atom", kept)
	}
}

func TestParseSMILES_PerceivesSixMemberedAromaticRings(t *testing.T) {
	tests := []struct {
		name         string
		smiles       string
		wantAromatic int
	}{
		{"benzene", "C1=CC=CC=C1", 6},
		{"pyridine", "C1=CC=NC=C1", 6},
		{"benzoic acid", "C1=CC=CC=C1C(=O)O", 6},
		{"naphthalene", "C1=CC=C2C=CC=CC2=C1", 10},
		{"half written naphthalene", "c1ccc2c(c1)C=CC=C2", 10},
		{"quinone", "O=C1C=CC(=O)C=C1", 0},
		{"cyclohexene", "C1=CCCCC1", 0},
		{"cyclohexadiene", "C1=CC=CCC1", 0},
		{"cyclopentadiene", "C1=CC=CC1", 0},
		{"pyridinium", "C1=CC=[NH+]C=C1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			aromatic := 0
			for i := 0; i < mol.NumAtoms(); i++ {
				if mol.Atom(i).Aromatic {
					aromatic++
				}
			}
			assert.Equal(t, tt.wantAromatic, aromatic)
		})
	}

	mol, err := ParseSMILES("C1=CC=CC=C1")
	require.NoError(t, err)
	for i := 0; i < mol.NumBonds(); i++ {
		assert.Equal(t, BondAromatic, mol.Bond(i).Order)
	}
	for i := 0; i < mol.NumAtoms(); i++ {
		assert.Equal(t, 1, mol.TotalHydrogens(i))
	}
}

func TestParseSMILES_Brackets(t *testing.T) {
	mol, err := ParseSMILES("[NH4+]")
	require.NoError(t, err)
	a := mol.Atom(0)
	assert.Equal(t, "N", a.Element)
	assert.Equal(t, 4, a.HCount)
	assert.Equal(t, 1, a.Charge)
	assert.True(t, a.Bracket)

	mol, err = ParseSMILES("[O--]")
	require.NoError(t, err)
	assert.Equal(t, -2, mol.Atom(0).Charge)

	mol, err = ParseSMILES("[CH3:7]C")
	require.NoError(t, err)
	assert.Equal(t, 7, mol.Atom(0).MapNum)
}

func TestImplicitHydrogens(t *testing.T) {
	tests := []struct {
		smiles string
		atom   int
		want   int
	}{
		{"C", 0, 4},
		{"OC(=O)C", 0, 1},
		{"OC(=O)C", 1, 0},
		{"OC(=O)C", 2, 0},
		{"OC(=O)C", 3, 3},
		{"NCC", 0, 2},
		{"NCC", 1, 2},
		{"c1ccccc1", 3, 1},
		{"Oc1ccccc1", 1, 0},
		{"c1ccncc1", 3, 0},
		{"[nH]1cccc1", 0, 1},
		{"CS(=O)(=O)C", 1, 0},
		{"[NH4+]", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mol.TotalHydrogens(tt.atom))
		})
	}
}

func TestRingAtoms(t *testing.T) {
	mol, err := ParseSMILES("CC1CCCC1")
	require.NoError(t, err)

	ring := mol.RingAtoms()
	assert.False(t, ring[0])
	for i := 1; i < mol.NumAtoms(); i++ {
		assert.True(t, ring[i], "atom %d should be in the ring", i)
	}
}

func TestFormula(t *testing.T) {
	tests := map[string]string{
		"CC(=O)NCC": "C4H9NO",
		"O":         "H2O",
		"ClCBr":     "CH2BrCl",
	}
	for smiles, want := range tests {
		mol, err := ParseSMILES(smiles)
		require.NoError(t, err)
		assert.Equal(t, want, mol.Formula(), smiles)
	}
}
