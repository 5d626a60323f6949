package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Option is a single selectable answer of a question.
type Option struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// Question is an assessment question with its ordered options.
type Question struct {
	Text    string   `yaml:"text" json:"question"`
	Options []Option `yaml:"options" json:"options"`
}

// Category groups questions under a title.
type Category struct {
	Key       string     `yaml:"key" json:"key"`
	Title     string     `yaml:"title" json:"title"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Catalog is the ordered set of assessment categories. It is never mutated after loading.
type Catalog struct {
	Version    int        `yaml:"version" json:"version"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %q: %w", path, err)
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %q: %w", path, err)
	}

	return cat, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := cat.validate(); err != nil {
		return nil, err
	}

	return &cat, nil
}

func (c *Catalog) validate() error {
	if len(c.Categories) == 0 {
		return errors.New("catalog has no categories")
	}

	seenQuestions := make(map[string]struct{})
	seenCategories := make(map[string]struct{})

	for i, category := range c.Categories {
		if strings.TrimSpace(category.Key) == "" {
			return fmt.Errorf("category #%d has no key", i+1)
		}
		if _, ok := seenCategories[category.Key]; ok {
			return fmt.Errorf("duplicate category key %q", category.Key)
		}
		seenCategories[category.Key] = struct{}{}

		if strings.TrimSpace(category.Title) == "" {
			return fmt.Errorf("category %q has no title", category.Key)
		}
		if len(category.Questions) == 0 {
			return fmt.Errorf("category %q has no questions", category.Key)
		}

		for _, question := range category.Questions {
			if strings.TrimSpace(question.Text) == "" {
				return fmt.Errorf("category %q has a question without text", category.Key)
			}
			if _, ok := seenQuestions[question.Text]; ok {
				return fmt.Errorf("duplicate question %q", question.Text)
			}
			seenQuestions[question.Text] = struct{}{}

			if len(question.Options) == 0 {
				return fmt.Errorf("question %q has no options", question.Text)
			}

			keys := make(map[string]struct{}, len(question.Options))
			for _, option := range question.Options {
				if strings.TrimSpace(option.Key) == "" || strings.TrimSpace(option.Label) == "" {
					return fmt.Errorf("question %q has an option without key or label", question.Text)
				}
				if _, ok := keys[option.Key]; ok {
					return fmt.Errorf("question %q has duplicate option key %q", question.Text, option.Key)
				}
				keys[option.Key] = struct{}{}
			}
		}
	}

	return nil
}

// Questions returns every question in catalog order.
func (c *Catalog) Questions() []Question {
	var questions []Question
	for _, category := range c.Categories {
		questions = append(questions, category.Questions...)
	}
	return questions
}

// Len returns the number of questions in the catalog.
func (c *Catalog) Len() int {
	n := 0
	for _, category := range c.Categories {
		n += len(category.Questions)
	}
	return n
}

// Option returns the label for key.
func (q Question) Option(key string) (string, bool) {
	key = strings.TrimSpace(key)
	for _, option := range q.Options {
		if option.Key == key {
			return option.Label, true
		}
	}
	return "", false
}

// Keys returns the option keys in order.
func (q Question) Keys() []string {
	keys := make([]string, 0, len(q.Options))
	for _, option := range q.Options {
		keys = append(keys, option.Key)
	}
	return keys
}

// ChoiceRange renders the accepted keys for a prompt, e.g. "1-3".
func (q Question) ChoiceRange() string {
	keys := q.Keys()
	switch len(keys) {
	case 0:
		return ""
	case 1:
		return keys[0]
	default:
		return keys[0] + "-" + keys[len(keys)-1]
	}
}
