// Package fallback supplies a built-in list of quests to show, read-only,
// when the board cannot be loaded and the local cache is empty.
package fallback

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/five82/sidequest/internal/sidequest"
)

//go:embed quests.yaml
var questsYAML []byte

// lifetime matches the backend's daily board.
const lifetime = 24 * time.Hour

type entry struct {
	Text          string   `yaml:"text"`
	Category      string   `yaml:"category"`
	EstimatedTime string   `yaml:"estimated_time"`
	Difficulty    string   `yaml:"difficulty"`
	Tags          []string `yaml:"tags"`
}

// Quests returns the built-in quests stamped as potential, created at now and
// expiring a day later. Ids are stable per position so repeated calls agree.
func Quests(now time.Time) ([]sidequest.Quest, error) {
	return parse(questsYAML, now)
}

func parse(raw []byte, now time.Time) ([]sidequest.Quest, error) {
	var entries []entry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse fallback quests: %w", err)
	}
	out := make([]sidequest.Quest, 0, len(entries))
	for i, e := range entries {
		cat := sidequest.Category(e.Category)
		if !cat.Valid() {
			return nil, fmt.Errorf("fallback quest %d: unknown category %q", i, e.Category)
		}
		out = append(out, sidequest.Quest{
			ID:            fmt.Sprintf("fallback-%d", i+1),
			Text:          e.Text,
			Category:      cat,
			EstimatedTime: e.EstimatedTime,
			Difficulty:    e.Difficulty,
			Tags:          e.Tags,
			Status:        sidequest.StatusPotential,
			CreatedAt:     now,
			ExpiresAt:     now.Add(lifetime),
		})
	}
	return out, nil
}
