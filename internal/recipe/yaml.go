package recipe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/logger"
)

// fileFormat is the on-disk recipe book:
//
//	recipes:
//	  - id: pasta
//	    title: Pasta
//	    steps:
//	      - description: Boil water
//	        timer_seconds: 300
type fileFormat struct {
	Recipes []fileRecipe `yaml:"recipes"`
}

type fileRecipe struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Steps       []fileStep `yaml:"steps"`
}

type fileStep struct {
	Description  string `yaml:"description"`
	TimerSeconds int    `yaml:"timer_seconds"`
	ImageURL     string `yaml:"image_url"`
}

// LoadFile reads a YAML recipe book from path.
func LoadFile(path string, log *logger.Logger) (*MemorySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipe file: %w", err)
	}
	defer f.Close()

	src, err := LoadYAML(f, log)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return src, nil
}

// LoadYAML builds a source from a YAML recipe book. Recipes without steps
// are accepted; starting them is refused later by the session controller.
func LoadYAML(r io.Reader, log *logger.Logger) (*MemorySource, error) {
	var book fileFormat
	if err := yaml.NewDecoder(r).Decode(&book); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	src := newSource(log)
	for i, fr := range book.Recipes {
		rec, err := fr.toDomain()
		if err != nil {
			return nil, fmt.Errorf("recipe #%d: %w", i+1, err)
		}
		if err := src.add(rec); err != nil {
			return nil, fmt.Errorf("recipe %q: %w", rec.ID, err)
		}
	}

	log.Info("loaded %d recipes from yaml", len(book.Recipes))
	return src, nil
}

func (fr fileRecipe) toDomain() (*domain.Recipe, error) {
	if fr.ID == "" {
		return nil, errors.New("id is required")
	}
	if fr.Title == "" {
		return nil, errors.New("title is required")
	}

	steps := make([]domain.Step, 0, len(fr.Steps))
	for i, fs := range fr.Steps {
		if fs.TimerSeconds < 0 {
			return nil, fmt.Errorf("step #%d: timer_seconds must be >= 0", i+1)
		}
		steps = append(steps, domain.Step{
			Description:  fs.Description,
			TimerSeconds: fs.TimerSeconds,
			ImageURL:     fs.ImageURL,
		})
	}

	return &domain.Recipe{
		ID:          fr.ID,
		Title:       fr.Title,
		Description: fr.Description,
		Steps:       steps,
	}, nil
}
