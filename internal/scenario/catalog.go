// Package scenario holds the demo scenario catalog: named bag images with
// the caller metadata to inspect them under.
package scenario

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lineguard/internal/model"
)

// Scenario is one named demo case. ImagePath points at a bag image on disk;
// the catalog never synthesizes images.
type Scenario struct {
	Name            string            `yaml:"name"`
	Description     string            `yaml:"description"`
	ImagePath       string            `yaml:"image_path"`
	BagNumber       int               `yaml:"bag_number"`
	ExpectedProduct model.ProductType `yaml:"expected_product"`
}

// Metadata builds the caller metadata for an inspection of this scenario.
func (s Scenario) Metadata() model.CallerMetadata {
	return model.CallerMetadata{
		BagNumber:       s.BagNumber,
		ExpectedProduct: s.ExpectedProduct,
	}
}

// ReadImage loads the scenario's image bytes.
func (s Scenario) ReadImage() ([]byte, error) {
	data, err := os.ReadFile(s.ImagePath)
	if err != nil {
		return nil, eris.Wrapf(err, "scenario: read image for %s", s.Name)
	}
	return data, nil
}

// Catalog is an ordered set of scenarios. Demo runs walk it front to back.
type Catalog struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Default returns the built-in catalog used when no file is configured.
func Default() *Catalog {
	return &Catalog{Scenarios: []Scenario{
		{
			Name:            "clean-bag",
			Description:     "Correctly positioned, fully legible code date",
			ImagePath:       "images/clean_bag.jpg",
			BagNumber:       1,
			ExpectedProduct: model.Product84DayNoPrice,
		},
		{
			Name:            "off-mark-faded",
			Description:     "Code date drifted off-center with faded print",
			ImagePath:       "images/off_mark_faded.jpg",
			BagNumber:       2,
			ExpectedProduct: model.Product84DayNoPrice,
		},
		{
			Name:            "on-mark",
			Description:     "Code date printed over the quality seal",
			ImagePath:       "images/on_mark.jpg",
			BagNumber:       3,
			ExpectedProduct: model.Product90DayPrice,
		},
	}}
}

// Load reads a catalog from a YAML file. An empty path returns the built-in
// default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "scenario: read catalog")
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, eris.Wrap(err, "scenario: parse catalog")
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Get looks up a scenario by name.
func (c *Catalog) Get(name string) (*Scenario, error) {
	for i := range c.Scenarios {
		if c.Scenarios[i].Name == name {
			return &c.Scenarios[i], nil
		}
	}
	return nil, eris.Errorf("scenario: unknown scenario %q", name)
}

func (c *Catalog) validate() error {
	if len(c.Scenarios) == 0 {
		return eris.New("scenario: catalog is empty")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for _, s := range c.Scenarios {
		if s.Name == "" {
			return eris.New("scenario: scenario missing name")
		}
		if seen[s.Name] {
			return eris.Errorf("scenario: duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
		if s.ImagePath == "" {
			return eris.Errorf("scenario: scenario %q missing image_path", s.Name)
		}
	}
	return nil
}
