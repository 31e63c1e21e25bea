package facematch

import (
	_ "embed"
	"sync"

	"github.com/kozaktomas/facegate/internal/landmark"
	"gopkg.in/yaml.v3"
)

//go:embed weights.yaml
var weightsYAML []byte

// WeightTable maps landmark labels to importance weights. Labels absent
// from the table score with the default weight.
type WeightTable struct {
	weights map[landmark.Label]float64
	def     float64
}

// RatioDef defines one anatomical ratio: the distance from point A to
// point B divided by the inter-ocular distance. When A2/B2 are set, the
// midpoint of (A, A2) resp. (B, B2) is used instead of the single point.
type RatioDef struct {
	Name string         `yaml:"name"`
	A    landmark.Label `yaml:"a"`
	A2   landmark.Label `yaml:"a2"`
	B    landmark.Label `yaml:"b"`
	B2   landmark.Label `yaml:"b2"`
}

type weightsFile struct {
	DefaultWeight float64 `yaml:"default_weight"`
	Tiers         []struct {
		Name   string           `yaml:"name"`
		Weight float64          `yaml:"weight"`
		Labels []landmark.Label `yaml:"labels"`
	} `yaml:"tiers"`
	MeshGroups []struct {
		Name    string  `yaml:"name"`
		Weight  float64 `yaml:"weight"`
		Indexes []int   `yaml:"indexes"`
	} `yaml:"mesh_groups"`
	Interocular struct {
		A landmark.Label `yaml:"a"`
		B landmark.Label `yaml:"b"`
	} `yaml:"interocular"`
	Ratios []RatioDef `yaml:"ratios"`
}

var (
	loadOnce     sync.Once
	defaultTable *WeightTable
	defaultRatioDefs []RatioDef
	interocularA landmark.Label
	interocularB landmark.Label
)

func loadEmbedded() {
	var f weightsFile
	if err := yaml.Unmarshal(weightsYAML, &f); err != nil {
		// Embedded file, corrupt data here is a build defect.
		panic("failed to unmarshal embedded weights.yaml: " + err.Error())
	}

	w := make(map[landmark.Label]float64)
	for _, tier := range f.Tiers {
		for _, l := range tier.Labels {
			w[l] = tier.Weight
		}
	}
	for _, g := range f.MeshGroups {
		for _, i := range g.Indexes {
			w[landmark.MeshLabel(i)] = g.Weight
		}
	}

	def := f.DefaultWeight
	if def <= 0 {
		def = 1.0
	}

	defaultTable = &WeightTable{weights: w, def: def}
	defaultRatioDefs = f.Ratios
	interocularA = f.Interocular.A
	interocularB = f.Interocular.B
}

// DefaultWeights returns the weight table parsed from the embedded
// weights.yaml.
func DefaultWeights() *WeightTable {
	loadOnce.Do(loadEmbedded)
	return defaultTable
}

// DefaultRatios returns the anatomical ratio definitions from the
// embedded weights.yaml.
func DefaultRatios() []RatioDef {
	loadOnce.Do(loadEmbedded)
	return defaultRatioDefs
}

// InterocularLabels returns the two labels whose distance serves as the
// scale reference and the ratio denominator.
func InterocularLabels() (landmark.Label, landmark.Label) {
	loadOnce.Do(loadEmbedded)
	return interocularA, interocularB
}

// Weight returns the importance weight for a label.
func (t *WeightTable) Weight(l landmark.Label) float64 {
	if w, ok := t.weights[l]; ok {
		return w
	}
	return t.def
}

// Len returns the number of explicitly weighted labels.
func (t *WeightTable) Len() int {
	return len(t.weights)
}
