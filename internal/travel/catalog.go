package travel

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/travel.yaml
var defaultCatalogYAML []byte

// Catalog holds every piece of prompt text the pipeline uses.
type Catalog struct {
	Classifier struct {
		System string `yaml:"system"`
	} `yaml:"classifier"`
	Generator struct {
		Suffix  string            `yaml:"suffix"`
		Prompts map[Intent]string `yaml:"prompts"`
	} `yaml:"generator"`
	FollowUp struct {
		Header    string              `yaml:"header"`
		Questions map[Intent][]string `yaml:"questions"`
	} `yaml:"followup"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic("travel: embedded prompt catalog is invalid: " + err.Error())
	}
	return c
}

// LoadCatalog reads a catalog from path, or returns the embedded one when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read prompt catalog")
	}
	c, err := ParseCatalog(b)
	if err != nil {
		return nil, errors.Wrapf(err, "prompt catalog %s", path)
	}
	return c, nil
}

func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrap(err, "decode prompt catalog")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if strings.TrimSpace(c.Classifier.System) == "" {
		return errors.New("classifier.system is required")
	}
	if strings.TrimSpace(c.Generator.Prompts[IntentGeneralTravel]) == "" {
		return errors.Errorf("generator.prompts.%s is required", IntentGeneralTravel)
	}
	for in := range c.Generator.Prompts {
		if !in.Valid() {
			return errors.Errorf("generator.prompts: unknown intent %q", in)
		}
	}
	for _, in := range FollowUpIntents {
		if len(c.FollowUp.Questions[in]) == 0 {
			return errors.Errorf("followup.questions.%s is required", in)
		}
	}
	for in := range c.FollowUp.Questions {
		if !in.wantsFollowUp() {
			return errors.Errorf("followup.questions: intent %q does not take follow-ups", in)
		}
	}
	return nil
}

// SystemPrompt returns the generator instruction for intent, falling back
// to the general_travel prompt, with the shared suffix appended.
func (c *Catalog) SystemPrompt(intent Intent) string {
	base, ok := c.Generator.Prompts[intent]
	if !ok || strings.TrimSpace(base) == "" {
		base = c.Generator.Prompts[IntentGeneralTravel]
	}
	base = strings.TrimSpace(base)
	suffix := strings.TrimSpace(c.Generator.Suffix)
	if suffix == "" {
		return base
	}
	return base + "\n\n" + suffix
}

// ClassifierPrompt returns the classifier instruction.
func (c *Catalog) ClassifierPrompt() string {
	return strings.TrimSpace(c.Classifier.System)
}
