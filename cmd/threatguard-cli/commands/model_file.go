package commands

import (
	"os"

	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/l3montree-dev/threatguard/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// modelFile is the on-disk YAML format the cli consumes.
type modelFile struct {
	Name       string              `yaml:"name"`
	Components []fileComponent     `yaml:"components"`
	Flows      []fileFlow          `yaml:"flows"`
	Boundaries []fileTrustBoundary `yaml:"boundaries"`
}

type fileComponent struct {
	ID                 string `yaml:"id"`
	Name               string `yaml:"name"`
	Type               string `yaml:"type"`
	Technology         string `yaml:"technology"`
	Criticality        string `yaml:"criticality"`
	DataClassification string `yaml:"dataClassification"`
	TrustBoundary      string `yaml:"trustBoundary"`
}

type fileFlow struct {
	ID                   string `yaml:"id"`
	SourceID             string `yaml:"sourceId"`
	TargetID             string `yaml:"targetId"`
	Label                string `yaml:"label"`
	Protocol             string `yaml:"protocol"`
	DataType             string `yaml:"dataType"`
	Encrypted            bool   `yaml:"encrypted"`
	Authenticated        bool   `yaml:"authenticated"`
	CrossesTrustBoundary bool   `yaml:"crossesTrustBoundary"`
}

type fileTrustBoundary struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

func readModelFile(path string) (string, *threatmodel.Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.Wrap(err, "could not read model file")
	}

	var file modelFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return "", nil, errors.Wrap(err, "could not parse model file")
	}
	if len(file.Components) == 0 {
		return "", nil, errors.New("model file defines no components")
	}

	components := utils.Map(file.Components, func(c fileComponent) threatmodel.Component {
		return threatmodel.Component{
			ID:                 c.ID,
			Name:               c.Name,
			Type:               c.Type,
			Technology:         c.Technology,
			Criticality:        threatmodel.Criticality(c.Criticality),
			DataClassification: c.DataClassification,
			TrustBoundary:      c.TrustBoundary,
		}
	})
	flows := utils.Map(file.Flows, func(f fileFlow) threatmodel.DataFlow {
		return threatmodel.DataFlow{
			ID:                   f.ID,
			SourceID:             f.SourceID,
			TargetID:             f.TargetID,
			Label:                f.Label,
			Protocol:             f.Protocol,
			DataType:             f.DataType,
			Encrypted:            f.Encrypted,
			Authenticated:        f.Authenticated,
			CrossesTrustBoundary: f.CrossesTrustBoundary,
		}
	})
	boundaries := utils.Map(file.Boundaries, func(b fileTrustBoundary) threatmodel.TrustBoundary {
		return threatmodel.TrustBoundary{Name: b.Name, MemberComponentIDs: b.Members}
	})

	graph, err := threatmodel.NewGraph(components, flows, boundaries)
	if err != nil {
		return "", nil, err
	}
	return file.Name, graph, nil
}
