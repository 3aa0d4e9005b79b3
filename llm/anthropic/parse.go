package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/becomeliminal/memtier/memory"
)

// parseMultiSummary decodes the summarizer's JSON response. Malformed JSON is
// run through jsonrepair before giving up; models frequently emit trailing
// commas or unquoted keys.
func parseMultiSummary(raw string) ([]memory.ThemeSummary, error) {
	var payload struct {
		Summaries []memory.ThemeSummary `json:"summaries"`
	}
	if err := unmarshalRepaired(raw, &payload); err != nil {
		return nil, err
	}

	// Drop entries with neither label nor content; a model sometimes pads
	// the array with empty objects.
	var summaries []memory.ThemeSummary
	for _, s := range payload.Summaries {
		if s.Theme == "" && s.Content == "" {
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// parseKeywords decodes a JSON array of strings, repairing when needed.
func parseKeywords(raw string) ([]string, error) {
	var keywords []string
	if err := unmarshalRepaired(raw, &keywords); err != nil {
		return nil, err
	}
	return keywords, nil
}

// parseBool reads a true/false judgment out of a short model response.
func parseBool(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "true")
}

// unmarshalRepaired unmarshals raw into v, retrying with jsonrepair when the
// first attempt fails.
func unmarshalRepaired(raw string, v interface{}) error {
	content := stripCodeFence(raw)

	err := json.Unmarshal([]byte(content), v)
	if err == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return fmt.Errorf("unmarshal failed and JSON could not be repaired: unmarshal error: %w, repair error: %v", err, repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("unmarshal repaired JSON: %w", err)
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence if present.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
