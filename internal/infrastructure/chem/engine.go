package chem

import (
	"fmt"

	"github.com/amidelab/enumerator/internal/domain"
)

// Engine implements domain.ReactionEngine on top of the SMILES/SMARTS
// toolkit in this package
type Engine struct{}

// NewEngine creates a new chemistry engine
func NewEngine() *Engine {
	return &Engine{}
}

// ParseStructure parses a SMILES token
func (e *Engine) ParseStructure(text string) (domain.Structure, error) {
	mol, err := ParseSMILES(text)
	if err != nil {
		return nil, err
	}
	return mol, nil
}

// Serialize writes a structure as SMILES
func (e *Engine) Serialize(s domain.Structure, canonical bool) (string, error) {
	mol, ok := s.(*Molecule)
	if !ok || mol == nil {
		return "", fmt.Errorf("chem: cannot serialize %T", s)
	}
	return WriteSMILES(mol, canonical), nil
}

// CompileTransform compiles a reaction SMARTS
func (e *Engine) CompileTransform(pattern string) (domain.Transform, error) {
	rxn, err := ParseReaction(pattern)
	if err != nil {
		return nil, err
	}
	return rxn, nil
}

// ApplyTransform runs a compiled reaction against the given reactants
func (e *Engine) ApplyTransform(t domain.Transform, reactants ...domain.Structure) ([]domain.ProductSet, error) {
	rxn, ok := t.(*Reaction)
	if !ok || rxn == nil {
		return nil, fmt.Errorf("chem: unsupported transform %T", t)
	}
	mols := make([]*Molecule, len(reactants))
	for i, s := range reactants {
		mol, ok := s.(*Molecule)
		if !ok || mol == nil {
			return nil, fmt.Errorf("chem: reactant %d is %T, not a molecule", i, s)
		}
		mols[i] = mol
	}

	candidates, err := rxn.Run(mols...)
	if err != nil {
		return nil, err
	}
	sets := make([]domain.ProductSet, len(candidates))
	for i, products := range candidates {
		set := make(domain.ProductSet, len(products))
		for j, p := range products {
			set[j] = p
		}
		sets[i] = set
	}
	return sets, nil
}
