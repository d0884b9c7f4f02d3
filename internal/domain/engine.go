package domain

import (
	"context"
	"time"
)

// Structure is an opaque molecular representation owned by a ReactionEngine
type Structure interface {
	// NumAtoms reports the number of heavy atoms
	NumAtoms() int
}

// Transform is a compiled two-reactant reaction rule
type Transform interface {
	// Pattern returns the source pattern the transform was compiled from
	Pattern() string
	// NumReactants reports how many reactant templates the rule has
	NumReactants() int
}

// ProductSet is one candidate outcome of applying a transform: an ordered
// group of product structures
type ProductSet []Structure

// ReactionEngine is the capability the enumeration driver needs from a
// chemistry toolkit. Implementations must be deterministic.
type ReactionEngine interface {
	ParseStructure(text string) (Structure, error)
	Serialize(s Structure, canonical bool) (string, error)
	CompileTransform(pattern string) (Transform, error)
	ApplyTransform(t Transform, reactants ...Structure) ([]ProductSet, error)
}

// StructureCache defines the interface for memoising parsed structures
type StructureCache interface {
	Get(ctx context.Context, key string) (Structure, error)
	Set(ctx context.Context, key string, value Structure, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// AmideCouplingPattern couples a carboxylic acid with a primary aliphatic
// amine, releasing water as the second product
const AmideCouplingPattern = "[OD1H:1]-[C:2]=[O:3].[ND1H2:4]-[CX4z1:5]>>[O:3]=[C:2]-[N:4]-[C:5].[O:1]"
