package domain

// Reagent is an input structure paired with the label it was listed under
type Reagent struct {
	Structure Structure
	Label     string
	Text      string // structure token as it appeared in the source
	Line      int    // 1-based source line
}

// ReagentPool is an ordered sequence of reagents in source order
type ReagentPool []Reagent

// Labels returns the reagent labels in pool order
func (p ReagentPool) Labels() []string {
	labels := make([]string, len(p))
	for i, r := range p {
		labels[i] = r.Label
	}
	return labels
}
