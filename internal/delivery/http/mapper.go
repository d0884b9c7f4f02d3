package http

import (
	"github.com/amidelab/enumerator/internal/domain"
)

// responseBuilder collects enumeration results into an EnumerateResponse.
// It implements usecase.ResultSink.
type responseBuilder struct {
	resp EnumerateResponse
}

func newResponseBuilder() *responseBuilder {
	return &responseBuilder{
		resp: EnumerateResponse{
			Accepted: []AcceptedProduct{},
			Rejected: []RejectedPair{},
		},
	}
}

func (b *responseBuilder) Accept(r *domain.Accepted) error {
	b.resp.Accepted = append(b.resp.Accepted, AcceptedProduct{
		Product: r.ProductText,
		Name:    r.CombinedName,
	})
	return nil
}

func (b *responseBuilder) Reject(r *domain.Rejected) error {
	pair := RejectedPair{
		Name:       domain.CombinedName(r.Acid, r.Amine),
		Acid:       r.AcidText,
		Amine:      r.AmineText,
		Count:      r.CandidateCount,
		Candidates: r.CandidateTexts,
	}
	if pair.Candidates == nil {
		pair.Candidates = []string{}
	}
	if r.Err != nil {
		pair.Error = r.Err.Error()
	}
	b.resp.Rejected = append(b.resp.Rejected, pair)
	return nil
}

// response finalises the reply with the run summary
func (b *responseBuilder) response(summary domain.Summary) EnumerateResponse {
	b.resp.Pairs = summary.Pairs
	return b.resp
}
