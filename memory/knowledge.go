package memory

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/becomeliminal/memtier/core"
)

// PromoteAnalysis folds a profile/knowledge analysis result into the
// long-term store. Empty analysis is a no-op. Non-trivial profile text
// replaces the stored profile; private and assistant knowledge are split on
// lines, "none" placeholders are discarded, and surviving lines are appended
// as knowledge items. The three sub-steps are independent and
// order-insensitive.
func (p *Promoter) PromoteAnalysis(ctx context.Context, userID string, analysis *core.ProfileAnalysis) error {
	if analysis.Empty() {
		log.Printf("[PROMOTER] No analysis result provided for long-term update")
		return nil
	}

	if profile := strings.TrimSpace(analysis.Profile); profile != "" && !strings.EqualFold(profile, "none") {
		log.Printf("[PROMOTER] Updating user profile for %s in long-term memory", userID)
		if err := p.long.UpdateUserProfile(ctx, userID, profile, false); err != nil {
			return fmt.Errorf("update user profile: %w", err)
		}
	}

	if err := p.promoteKnowledgeLines(ctx, analysis.PrivateKnowledge, p.long.AddUserKnowledge); err != nil {
		return fmt.Errorf("add user knowledge: %w", err)
	}

	if err := p.promoteKnowledgeLines(ctx, analysis.AssistantKnowledge, p.long.AddAssistantKnowledge); err != nil {
		return fmt.Errorf("add assistant knowledge: %w", err)
	}

	return nil
}

// promoteKnowledgeLines appends each surviving line of a knowledge block
// through add. Blank lines and "none" placeholders never reach the store.
func (p *Promoter) promoteKnowledgeLines(ctx context.Context, text string, add func(context.Context, string) error) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return nil
	}

	for _, line := range strings.Split(text, "\n") {
		item := trimBullet(line)
		if item == "" || isNonePlaceholder(item) {
			continue
		}
		if err := add(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// isNonePlaceholder matches "none" in any case, with or without a trailing
// period. Bullets are expected to be stripped already.
func isNonePlaceholder(item string) bool {
	return strings.EqualFold(strings.TrimSuffix(item, "."), "none")
}

// trimBullet strips surrounding whitespace and a single leading list bullet.
func trimBullet(line string) string {
	s := strings.TrimSpace(line)
	for _, bullet := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(s, bullet) {
			return strings.TrimSpace(strings.TrimPrefix(s, bullet))
		}
	}
	return s
}
