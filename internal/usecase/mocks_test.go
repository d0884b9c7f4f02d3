package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/amidelab/enumerator/internal/domain"
)

// mockStructure is a structure whose serialization is its own text
type mockStructure struct {
	Text string
}

func (m mockStructure) NumAtoms() int { return len(m.Text) }

type mockTransform struct {
	pattern   string
	reactants int
}

func (m mockTransform) Pattern() string   { return m.pattern }
func (m mockTransform) NumReactants() int { return m.reactants }

// MockReactionEngine is a mock implementation of domain.ReactionEngine.
// ApplyTransform looks candidates up by "acid|amine" text.
type MockReactionEngine struct {
	invalid         map[string]bool
	products        map[string][]domain.ProductSet
	applyErrors     map[string]error
	serializeErrors map[string]error // by structure text, non-canonical only
	compileError    error
	reactants       int
	parseCalls      int
	applyCalls      int
}

func NewMockReactionEngine() *MockReactionEngine {
	return &MockReactionEngine{
		invalid:         make(map[string]bool),
		products:        make(map[string][]domain.ProductSet),
		applyErrors:     make(map[string]error),
		serializeErrors: make(map[string]error),
		reactants:       2,
	}
}

// single registers a pair that yields one candidate with the given products
func (m *MockReactionEngine) single(acid, amine string, products ...string) {
	m.products[acid+"|"+amine] = []domain.ProductSet{productSet(products...)}
}

func productSet(texts ...string) domain.ProductSet {
	set := make(domain.ProductSet, 0, len(texts))
	for _, t := range texts {
		set = append(set, mockStructure{Text: t})
	}
	return set
}

func (m *MockReactionEngine) ParseStructure(text string) (domain.Structure, error) {
	m.parseCalls++
	if m.invalid[text] {
		return nil, errors.New("unparsable structure")
	}
	return mockStructure{Text: text}, nil
}

func (m *MockReactionEngine) Serialize(s domain.Structure, canonical bool) (string, error) {
	ms, ok := s.(mockStructure)
	if !ok {
		return "", errors.New("foreign structure")
	}
	if canonical {
		return "canon:" + ms.Text, nil
	}
	if err := m.serializeErrors[ms.Text]; err != nil {
		return "", err
	}
	return ms.Text, nil
}

func (m *MockReactionEngine) CompileTransform(pattern string) (domain.Transform, error) {
	if m.compileError != nil {
		return nil, m.compileError
	}
	return mockTransform{pattern: pattern, reactants: m.reactants}, nil
}

func (m *MockReactionEngine) ApplyTransform(t domain.Transform, reactants ...domain.Structure) ([]domain.ProductSet, error) {
	m.applyCalls++
	key := reactants[0].(mockStructure).Text + "|" + reactants[1].(mockStructure).Text
	if err := m.applyErrors[key]; err != nil {
		return nil, err
	}
	return m.products[key], nil
}

// MockStructureCache is a mock implementation of domain.StructureCache
type MockStructureCache struct {
	data     map[string]domain.Structure
	getError error
	setError error
	getCalls int
	setCalls int
}

func NewMockStructureCache() *MockStructureCache {
	return &MockStructureCache{
		data: make(map[string]domain.Structure),
	}
}

func (m *MockStructureCache) Get(ctx context.Context, key string) (domain.Structure, error) {
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockStructureCache) Set(ctx context.Context, key string, value domain.Structure, ttl time.Duration) error {
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockStructureCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockStructureCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}
