package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/amidelab/enumerator/internal/domain"
)

// ResultSink receives enumeration results in row-major order
type ResultSink interface {
	Accept(result *domain.Accepted) error
	Reject(result *domain.Rejected) error
}

// EnumerationService pairs every acid with every amine and applies a
// two-reactant transform to each pair
type EnumerationService struct {
	engine domain.ReactionEngine
	logger *zap.Logger
}

// NewEnumerationService creates a new enumeration service with dependencies
func NewEnumerationService(engine domain.ReactionEngine, logger *zap.Logger) *EnumerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnumerationService{
		engine: engine,
		logger: logger,
	}
}

// CompileTransform compiles pattern and checks that it takes exactly two reactants
func (s *EnumerationService) CompileTransform(pattern string) (domain.Transform, error) {
	t, err := s.engine.CompileTransform(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: reaction %q: %w", domain.ErrConfig, pattern, err)
	}
	if n := t.NumReactants(); n != 2 {
		return nil, fmt.Errorf("%w: reaction %q has %d reactant templates, want 2", domain.ErrConfig, pattern, n)
	}
	return t, nil
}

// Enumerate returns the lazy sequence of results for acids × amines, acid
// major and amine minor. Each range over the sequence re-evaluates every
// pair, so the sequence can be consumed more than once.
func (s *EnumerationService) Enumerate(
	acids, amines domain.ReagentPool,
	t domain.Transform,
) iter.Seq[domain.EnumerationResult] {
	return func(yield func(domain.EnumerationResult) bool) {
		for _, acid := range acids {
			for _, amine := range amines {
				if !yield(s.Evaluate(acid, amine, t)) {
					return
				}
			}
		}
	}
}

// Evaluate applies t to a single (acid, amine) pair. Exactly one candidate
// product set is accepted; anything else is rejected.
func (s *EnumerationService) Evaluate(acid, amine domain.Reagent, t domain.Transform) domain.EnumerationResult {
	sets, err := s.engine.ApplyTransform(t, acid.Structure, amine.Structure)
	if err == nil && len(sets) == 1 {
		accepted, acceptErr := s.accept(acid, amine, sets[0])
		if acceptErr == nil {
			return accepted
		}
		err = acceptErr
	}

	rejected := &domain.Rejected{
		Acid:           acid,
		Amine:          amine,
		AcidText:       s.canonical(acid.Structure, acid.Text),
		AmineText:      s.canonical(amine.Structure, amine.Text),
		CandidateCount: len(sets),
		Err:            err,
	}
	for i := range sets {
		rejected.CandidateTexts = append(rejected.CandidateTexts, s.candidateText(sets[i]))
	}

	s.logger.Debug("pair rejected",
		zap.String("acid", acid.Label),
		zap.String("amine", amine.Label),
		zap.Int("candidates", rejected.CandidateCount),
		zap.Error(err))
	return rejected
}

// accept builds the Accepted record from the only candidate. Co-products
// after the first structure are dropped.
func (s *EnumerationService) accept(acid, amine domain.Reagent, set domain.ProductSet) (*domain.Accepted, error) {
	if len(set) == 0 {
		return nil, errors.New("candidate has no products")
	}
	product := set[0]
	text, err := s.engine.Serialize(product, false)
	if err != nil {
		return nil, fmt.Errorf("serialize product: %w", err)
	}
	return &domain.Accepted{
		Acid:         acid,
		Amine:        amine,
		Product:      product,
		ProductText:  text,
		CombinedName: domain.CombinedName(acid, amine),
	}, nil
}

func (s *EnumerationService) canonical(structure domain.Structure, fallback string) string {
	text, err := s.engine.Serialize(structure, true)
	if err != nil {
		return fallback
	}
	return text
}

// candidateText joins the canonical text of every product in one candidate
func (s *EnumerationService) candidateText(set domain.ProductSet) string {
	parts := make([]string, 0, len(set))
	for _, p := range set {
		parts = append(parts, s.canonical(p, "?"))
	}
	return strings.Join(parts, ".")
}

// Run drains the enumeration into sink, stopping early only when ctx is
// cancelled or the sink fails
func (s *EnumerationService) Run(
	ctx context.Context,
	acids, amines domain.ReagentPool,
	t domain.Transform,
	sink ResultSink,
) (domain.Summary, error) {
	var summary domain.Summary
	for result := range s.Enumerate(acids, amines, t) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Pairs++

		var err error
		switch r := result.(type) {
		case *domain.Accepted:
			summary.Accepted++
			err = sink.Accept(r)
		case *domain.Rejected:
			summary.Rejected++
			err = sink.Reject(r)
		}
		if err != nil {
			return summary, fmt.Errorf("write result: %w", err)
		}
	}

	s.logger.Info("enumeration finished",
		zap.Int("pairs", summary.Pairs),
		zap.Int("accepted", summary.Accepted),
		zap.Int("rejected", summary.Rejected))
	return summary, nil
}
