// Package recipe provides recipe sources that work without the backend.
package recipe

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*MemorySource)(nil)

// MemorySource holds recipes in memory. Safe for concurrent reads.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	log     *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with built-in recipes.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := newSource(log)
	src.seed()
	return src
}

func newSource(log *logger.Logger) *MemorySource {
	return &MemorySource{
		recipes: make(map[string]*domain.Recipe),
		log:     log,
	}
}

// List returns summaries of all available recipes, sorted by title.
func (s *MemorySource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.recipes))

	out := make([]domain.RecipeSummary, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, domain.RecipeSummary{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Get returns a copy of the recipe with the given ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	cp := *r
	cp.Steps = append([]domain.Step(nil), r.Steps...)
	return &cp, nil
}

// add stores a recipe, rejecting duplicate IDs.
func (s *MemorySource) add(r *domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[r.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.recipes[r.ID] = r
	return nil
}

// seed populates the source with built-in recipes.
func (s *MemorySource) seed() {
	recipes := []*domain.Recipe{
		pastaAglioOlio(),
		softBoiledEggs(),
		greenTea(),
	}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	s.log.Debug("seeded %d recipes", len(recipes))
}

func pastaAglioOlio() *domain.Recipe {
	return &domain.Recipe{
		ID:          "pasta-aglio-olio",
		Title:       "Pasta Aglio e Olio",
		Description: "Spaghetti with garlic, olive oil and chili. Ten minutes, five ingredients.",
		Steps: []domain.Step{
			{Description: "Bring a large pot of salted water to a boil."},
			{Description: "Cook the spaghetti until al dente.", TimerSeconds: 540},
			{Description: "Meanwhile, gently fry sliced garlic and chili flakes in olive oil until golden.", TimerSeconds: 120},
			{Description: "Toss the drained pasta in the pan with a splash of pasta water and parsley."},
		},
	}
}

func softBoiledEggs() *domain.Recipe {
	return &domain.Recipe{
		ID:          "soft-boiled-eggs",
		Title:       "Soft Boiled Eggs",
		Description: "Jammy yolks every time.",
		Steps: []domain.Step{
			{Description: "Lower the eggs into boiling water.", TimerSeconds: 390},
			{Description: "Move them to an ice bath.", TimerSeconds: 60},
			{Description: "Peel and season with flaky salt."},
		},
	}
}

func greenTea() *domain.Recipe {
	return &domain.Recipe{
		ID:          "green-tea",
		Title:       "Green Tea",
		Description: "A proper cup.",
		Steps: []domain.Step{
			{Description: "Heat water to about 80°C."},
			{Description: "Steep the leaves.", TimerSeconds: 120},
		},
	}
}
