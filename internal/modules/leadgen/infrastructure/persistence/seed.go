package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"LeadForge/internal/modules/leadgen/domain/entity"
)

// LoadSeedTemplates reads the static template seed file. Validation is
// strict: the seed is reference data the whole retrieval path depends on, so
// a malformed entry fails the load instead of silently indexing garbage.
func LoadSeedTemplates(path string) ([]entity.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var templates []entity.Template
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(templates))
	for i := range templates {
		t := &templates[i]
		if strings.TrimSpace(t.Id) == "" {
			return nil, fmt.Errorf("seed entry %d: missing id", i)
		}
		if seen[t.Id] {
			return nil, fmt.Errorf("seed entry %d: duplicate id %s", i, t.Id)
		}
		seen[t.Id] = true
		if strings.TrimSpace(t.Subject) == "" || strings.TrimSpace(t.Body) == "" {
			return nil, fmt.Errorf("seed entry %s: missing subject or body", t.Id)
		}
		if t.Category == "" {
			t.Category = "general"
		}
		if t.Tone == "" {
			t.Tone = "professional"
		}
	}
	return templates, nil
}
