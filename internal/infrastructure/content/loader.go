// Package content loads the static journey and financing directory from YAML.
// The default documents are embedded in the binary; a directory can replace them.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fundroad/fundroad-go/internal/domain/entities/financing"
	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/resources"
)

const (
	journeyFile   = "journey.yaml"
	financingFile = "financing.yaml"
)

//go:embed data/*.yaml
var embedded embed.FS

// Content is the validated static configuration.
type Content struct {
	Catalog   *journey.Catalog
	Financing []financing.Entry
}

type journeyDocument struct {
	Steps   []journey.Step            `yaml:"steps"`
	Aliases map[int]map[string]string `yaml:"aliases"`
}

type financingDocument struct {
	Entries []financing.Entry `yaml:"entries"`
}

// Load reads the content from dir, or the embedded documents when dir is empty.
func Load(dir string) (*Content, error) {
	if dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return nil, fmt.Errorf("open embedded content: %w", err)
		}
		return LoadFS(sub)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads journey.yaml and financing.yaml from fsys and validates them.
func LoadFS(fsys fs.FS) (*Content, error) {
	var doc journeyDocument
	if err := decodeFile(fsys, journeyFile, &doc); err != nil {
		return nil, err
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("%s: no steps defined", journeyFile)
	}
	if err := validateResourceTypes(doc.Steps); err != nil {
		return nil, fmt.Errorf("%s: %w", journeyFile, err)
	}

	catalog, err := journey.NewCatalog(doc.Steps, doc.Aliases)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", journeyFile, err)
	}

	var fin financingDocument
	if err := decodeFile(fsys, financingFile, &fin); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	for i, entry := range fin.Entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("%s: entry %d has no name", financingFile, i)
		}
	}

	return &Content{Catalog: catalog, Financing: fin.Entries}, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func validateResourceTypes(steps []journey.Step) error {
	check := func(where string, list []journey.Resource) error {
		for _, r := range list {
			if !resources.IsKnownType(r.Type) {
				return fmt.Errorf("%s: resource %q has unknown type %q", where, r.Name, r.Type)
			}
		}
		return nil
	}
	for _, step := range steps {
		if err := check(fmt.Sprintf("step %d", step.ID), step.Resources); err != nil {
			return err
		}
		for _, sub := range step.SubSteps {
			where := fmt.Sprintf("step %d substep %q", step.ID, sub.Title)
			if err := check(where, sub.Resources); err != nil {
				return err
			}
			if err := check(where, sub.Course); err != nil {
				return err
			}
		}
	}
	return nil
}
