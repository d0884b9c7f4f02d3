package domain

// EnumerationResult is the outcome for one (acid, amine) pair: either
// *Accepted or *Rejected
type EnumerationResult interface {
	Pair() (acid, amine Reagent)
	isEnumerationResult()
}

// Accepted is produced when a pair yields exactly one candidate product set
type Accepted struct {
	Acid         Reagent
	Amine        Reagent
	Product      Structure // first structure of the only candidate
	ProductText  string    // non-canonical serialization of Product
	CombinedName string
}

// Rejected is produced when a pair yields zero or several candidate sets,
// or when the engine fails on the pair.
//
// CandidateCount is always the number of sets the transform produced. It is
// 1 when the only candidate was empty or could not be serialized; Err is set
// in that case and explains the rejection.
type Rejected struct {
	Acid           Reagent
	Amine          Reagent
	AcidText       string // canonical
	AmineText      string // canonical
	CandidateCount int
	CandidateTexts []string // canonical text of each candidate's products, by position
	Err            error
}

func (a *Accepted) Pair() (Reagent, Reagent) { return a.Acid, a.Amine }
func (r *Rejected) Pair() (Reagent, Reagent) { return r.Acid, r.Amine }

func (*Accepted) isEnumerationResult() {}
func (*Rejected) isEnumerationResult() {}

// CombinedName joins two reagent labels the way accepted products are named
func CombinedName(acid, amine Reagent) string {
	return acid.Label + " + " + amine.Label
}

// Summary counts the results of one enumeration run
type Summary struct {
	Pairs    int `json:"pairs"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}
