package version

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Strategy extracts a version from manifest content.
// A strategy that cannot handle the document reports a miss (ok == false, err == nil)
// so the next strategy is tried. A non-nil error stops resolution.
type Strategy interface {
	Name() string
	Extract(content []byte) (version string, ok bool, err error)
}

// DefaultStrategies returns the structured parser followed by the line-scan fallback
func DefaultStrategies() []Strategy {
	return []Strategy{TOMLStrategy{}, LineScanStrategy{}}
}

// TOMLStrategy looks up project.version in a TOML document.
// Content that does not decode as TOML is a miss. A decoded document
// without a string project.version is an error.
type TOMLStrategy struct{}

func (TOMLStrategy) Name() string { return "toml" }

func (TOMLStrategy) Extract(content []byte) (string, bool, error) {
	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return "", false, nil
	}

	project, ok := doc["project"].(map[string]any)
	if !ok {
		return "", false, fmt.Errorf("%w: no [project] table", ErrParse)
	}

	raw, ok := project["version"]
	if !ok {
		return "", false, fmt.Errorf("%w: project.version not set", ErrParse)
	}

	v, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: project.version must be a string, got %T", ErrParse, raw)
	}

	return v, true, nil
}

// LineScanStrategy takes the first `version = "..."` or `version = '...'` line.
// Not finding a match is an error, not a miss.
type LineScanStrategy struct{}

func (LineScanStrategy) Name() string { return "line-scan" }

func (LineScanStrategy) Extract(content []byte) (string, bool, error) {
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)

		for _, quote := range []string{`"`, `'`} {
			if !strings.HasPrefix(line, "version = "+quote) {
				continue
			}
			parts := strings.Split(line, quote)
			return parts[1], true, nil
		}
	}

	return "", false, fmt.Errorf("%w: version field not found", ErrParse)
}
