// Package definition loads wizard definitions from YAML or JSON documents,
// from OpenAPI operations annotated with x-wizard extensions, and exposes the
// embedded care-intake flow used by the CLI and the examples.
package definition

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/model"
)

//go:embed definitions/*.yaml
var embedded embed.FS

const careIntakePath = "definitions/care-intake.yaml"

// DemoValues is the sample data prefilled when a session runs in demo mode.
var DemoValues = map[string]string{
	"postcode":  "SW1A 1AA",
	"city":      "London",
	"full_name": "John Doe",
	"email":     "john.doe@example.com",
	"phone":     "07123456789",
}

// Embedded exposes the bundled definition files.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "definitions")
	if err != nil {
		return embedded
	}
	return sub
}

// CareIntake returns the bundled five-step care-service intake flow.
func CareIntake() (model.Wizard, error) {
	data, err := embedded.ReadFile(careIntakePath)
	if err != nil {
		return model.Wizard{}, fmt.Errorf("definition: read embedded care intake: %w", err)
	}
	return Parse(data, careIntakePath)
}

// MustCareIntake is CareIntake for package-level wiring; it panics on error.
func MustCareIntake() model.Wizard {
	def, err := CareIntake()
	if err != nil {
		panic(err)
	}
	return def
}

// Parse decodes a definition. Files ending in .json are decoded as JSON,
// everything else as YAML. The result is validated before it is returned.
func Parse(data []byte, path string) (model.Wizard, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.Wizard{}, fmt.Errorf("definition: %s is empty", displayPath(path))
	}

	var def model.Wizard
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &def); err != nil {
			return model.Wizard{}, fmt.Errorf("definition: parse %s: %w", displayPath(path), err)
		}
	default:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return model.Wizard{}, fmt.Errorf("definition: parse %s: %w", displayPath(path), err)
		}
	}

	if err := def.Validate(); err != nil {
		return model.Wizard{}, fmt.Errorf("definition: %s: %w", displayPath(path), err)
	}
	return def, nil
}

// LoadFile reads and parses a definition from disk.
func LoadFile(path string) (model.Wizard, error) {
	if strings.TrimSpace(path) == "" {
		return model.Wizard{}, errors.New("definition: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Wizard{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads and parses a definition from fsys.
func LoadFS(fsys fs.FS, path string) (model.Wizard, error) {
	if fsys == nil {
		return model.Wizard{}, errors.New("definition: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return model.Wizard{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Load resolves a definition location: an empty location selects the bundled
// care intake flow, anything else is read from disk.
func Load(location string) (model.Wizard, error) {
	if strings.TrimSpace(location) == "" {
		return CareIntake()
	}
	return LoadFile(location)
}

func displayPath(path string) string {
	if path == "" {
		return "definition"
	}
	return path
}
