package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSMILES_PreservesInputOrder(t *testing.T) {
	tests := []string{
		"OC(=O)C",
		"NCC",
		"c1ccccc1",
		"O=C(NCC)C",
		"[NH4+]",
		"[nH]1cccc1",
		"CC.O",
		"C1CC2CCC1C2",
		"[13CH3]O",
		"C#N",
		"Clc1ccccc1",
	}
	for _, smiles := range tests {
		t.Run(smiles, func(t *testing.T) {
			mol, err := ParseSMILES(smiles)
			require.NoError(t, err)
			assert.Equal(t, smiles, WriteSMILES(mol, false))
		})
	}
}

func TestWriteSMILES_NormalisesRedundantBrackets(t *testing.T) {
	mol, err := ParseSMILES("[CH3][OH]")
	require.NoError(t, err)
	assert.Equal(t, "CO", WriteSMILES(mol, false))
}

func TestWriteSMILES_CanonicalIsOrderIndependent(t *testing.T) {
	groups := [][]string{
		{"CCO", "OCC", "C(O)C"},
		{"CC(=O)O", "OC(=O)C", "C(=O)(C)O", "O=C(O)C"},
		{"CC(=O)NCC", "O=C(NCC)C", "CCNC(C)=O"},
		{"Oc1ccccc1", "c1ccccc1O", "c1cc(O)ccc1"},
		{"CC.O", "O.CC"},
		{"OC(=O)CC(=O)O", "C(C(=O)O)C(=O)O"},
		{"c1ccccc1C(=O)O", "C1=CC=CC=C1C(=O)O", "OC(=O)C1=CC=CC=C1"},
		{"c1ccc2ccccc2c1", "C1=CC=C2C=CC=CC2=C1"},
		{"c1ccncc1", "C1=CC=NC=C1"},
		{"CC(=O)NCC", "CC(=O)N([H])CC", "[H]C([H])([H])C(=O)NCC"},
		{"N[C@@H](C)CC", "C[C@H](N)CC", "CC[C@H](C)N", "[C@H](N)(C)CC"},
	}
	for _, group := range groups {
		t.Run(group[0], func(t *testing.T) {
			want := ""
			for i, smiles := range group {
				mol, err := ParseSMILES(smiles)
				require.NoError(t, err)
				got := WriteSMILES(mol, true)
				if i == 0 {
					want = got
					continue
				}
				assert.Equal(t, want, got, "canonical form of %s", smiles)
			}
		})
	}
}

func TestWriteSMILES_CanonicalRoundTrip(t *testing.T) {
	for _, smiles := range []string{"CC(=O)NCC", "c1ccc2ccccc2c1", "C1CCCCC1N", "[O-]C(=O)C"} {
		mol, err := ParseSMILES(smiles)
		require.NoError(t, err)
		first := WriteSMILES(mol, true)

		again, err := ParseSMILES(first)
		require.NoError(t, err)
		assert.Equal(t, first, WriteSMILES(again, true))
		assert.Equal(t, mol.Formula(), again.Formula())
	}
}

func TestWriteSMILES_KekuleInputWritesAromatic(t *testing.T) {
	mol, err := ParseSMILES("C1=CC=CC=C1C(=O)O")
	require.NoError(t, err)
	assert.Equal(t, "c1ccccc1C(=O)O", WriteSMILES(mol, false))
}

func TestWriteSMILES_Chirality(t *testing.T) {
	tests := []struct {
		smiles string
		want   string
	}{
		{"N[C@@H](C)CC", "N[C@@H](C)CC"},
		{"N[C@H](C)CC", "N[C@H](C)CC"},
		{"[C@@H](N)(C)CC", "[C@@H](N)(C)CC"},
		{"C[C@@H]1CCCN1", "C[C@@H]1CCCN1"},
		{"N[C@TH2H](C)CC", "N[C@@H](C)CC"},
		{"N[C@@]([H])(C)CC", "N[C@@H](C)CC"},
		{"C[C@H]", "C[CH]"},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.want, WriteSMILES(mol, false))
		})
	}
}

func TestWriteSMILES_CanonicalKeepsEnantiomersApart(t *testing.T) {
	r, err := ParseSMILES("N[C@@H](C)CC")
	require.NoError(t, err)
	s, err := ParseSMILES("N[C@H](C)CC")
	require.NoError(t, err)

	assert.NotEqual(t, WriteSMILES(r, true), WriteSMILES(s, true))
	assert.Contains(t, WriteSMILES(r, true), "@")
}

func TestCanonicalRanksAreDistinct(t *testing.T) {
	mol, err := ParseSMILES("c1ccccc1")
	require.NoError(t, err)

	ranks := CanonicalRanks(mol)
	seen := map[int]bool{}
	for _, r := range ranks {
		assert.False(t, seen[r], "rank %d repeated", r)
		seen[r] = true
	}
	assert.Len(t, seen, 6)
}
