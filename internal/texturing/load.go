package texturing

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/tilegen/internal/model"
)

// catalogFile is the on-disk YAML layout of a catalog.
type catalogFile struct {
	Nodraw     string            `yaml:"nodraw"`
	Specials   map[string]string `yaml:"specials"`
	Antigel    map[string]string `yaml:"antigel"`
	Generators []generatorFile   `yaml:"generators"`
}

type generatorFile struct {
	Portal   string                    `yaml:"portal"`
	Orient   string                    `yaml:"orient"`
	Options  Options                   `yaml:",inline"`
	Weights  map[string]int            `yaml:"weights"`
	Textures map[string][]materialFile `yaml:"textures"`
}

// materialFile accepts either a bare material name or a mapping with a
// material and scale.
type materialFile struct {
	Mat   string
	Scale float64
}

func (m *materialFile) UnmarshalYAML(node *yaml.Node) error {
	m.Scale = 1
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&m.Mat)
	case yaml.MappingNode:
		var raw struct {
			Mat   string   `yaml:"material"`
			Scale *float64 `yaml:"scale"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		m.Mat = raw.Mat
		if raw.Scale != nil {
			m.Scale = *raw.Scale
		}
	default:
		return fmt.Errorf("line %d: material must be a name or a mapping", node.Line)
	}
	if m.Mat == "" {
		return fmt.Errorf("line %d: material name is empty", node.Line)
	}
	if m.Scale <= 0 {
		return fmt.Errorf("line %d: material scale must be positive, not %g", node.Line, m.Scale)
	}
	return nil
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string, log *zap.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := ParseCatalog(data, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes a catalog from YAML. Missing specials and the
// nodraw material take their stock values.
func ParseCatalog(data []byte, log *zap.Logger) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	cat := NewCatalog(log)
	stock := DefaultCatalog(nil)
	for name, mat := range stock.Specials {
		cat.Specials[name] = mat
	}
	if file.Nodraw != "" {
		cat.Nodraw = file.Nodraw
	}
	for name, mat := range file.Specials {
		cat.Specials[name] = mat
	}
	for mat, ag := range file.Antigel {
		cat.SetAntigel(mat, ag)
	}

	for i, gf := range file.Generators {
		portal, err := model.ParsePortalable(gf.Portal)
		if err != nil {
			return nil, fmt.Errorf("generator %d: %w", i, err)
		}
		orient, err := model.ParseOrient(gf.Orient)
		if err != nil {
			return nil, fmt.Errorf("generator %d: %w", i, err)
		}

		weights := make(map[model.TileSize]int, len(gf.Weights))
		for name, w := range gf.Weights {
			size, err := model.ParseTileSize(name)
			if err != nil {
				return nil, fmt.Errorf("generator %d weights: %w", i, err)
			}
			if w < 0 {
				return nil, fmt.Errorf("generator %d weights: %s is negative", i, name)
			}
			weights[size] = w
		}

		textures := make(map[model.TileSize][]model.MaterialConf, len(gf.Textures))
		for name, mats := range gf.Textures {
			size, err := model.ParseTileSize(name)
			if err != nil {
				return nil, fmt.Errorf("generator %d textures: %w", i, err)
			}
			for _, m := range mats {
				textures[size] = append(textures[size], model.MaterialConf{
					Mat:      m.Mat,
					Scale:    m.Scale,
					TileSize: size,
				})
			}
		}

		if _, err := cat.AddGenerator(portal, orient, gf.Options, weights, textures); err != nil {
			return nil, fmt.Errorf("generator %d: %w", i, err)
		}
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}
