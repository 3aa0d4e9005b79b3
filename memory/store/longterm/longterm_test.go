package longterm

import (
	"context"
	"fmt"
	"testing"
)

func TestUpdateUserProfile_ReplaceAndMerge(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})

	if err := s.UpdateUserProfile(ctx, "u1", "likes hiking", false); err != nil {
		t.Fatalf("UpdateUserProfile failed: %v", err)
	}
	if err := s.UpdateUserProfile(ctx, "u1", "likes climbing", false); err != nil {
		t.Fatalf("UpdateUserProfile failed: %v", err)
	}
	if got := s.Profile("u1"); got != "likes climbing" {
		t.Errorf("Expected replacement, got %q", got)
	}

	if err := s.UpdateUserProfile(ctx, "u1", "owns a dog", true); err != nil {
		t.Fatalf("UpdateUserProfile failed: %v", err)
	}
	if got := s.Profile("u1"); got != "likes climbing\nowns a dog" {
		t.Errorf("Expected appended profile, got %q", got)
	}

	// Merge into an unset profile behaves like a plain set.
	if err := s.UpdateUserProfile(ctx, "u2", "new user", true); err != nil {
		t.Fatalf("UpdateUserProfile failed: %v", err)
	}
	if got := s.Profile("u2"); got != "new user" {
		t.Errorf("Expected plain set for a fresh user, got %q", got)
	}
}

func TestKnowledgeRings_BoundedEviction(t *testing.T) {
	ctx := context.Background()
	s := New(Config{KnowledgeCapacity: 3})

	for i := 0; i < 5; i++ {
		if err := s.AddUserKnowledge(ctx, fmt.Sprintf("fact %d", i)); err != nil {
			t.Fatalf("AddUserKnowledge failed: %v", err)
		}
	}

	items := s.UserKnowledge()
	if len(items) != 3 {
		t.Fatalf("Expected ring capped at 3, got %d", len(items))
	}
	if items[0].Text != "fact 2" || items[2].Text != "fact 4" {
		t.Errorf("Expected oldest evicted, got %q..%q", items[0].Text, items[2].Text)
	}
}

func TestKnowledgeStreams_Independent(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})

	if err := s.AddUserKnowledge(ctx, "user fact"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddAssistantKnowledge(ctx, "assistant fact"); err != nil {
		t.Fatal(err)
	}

	if got := s.UserKnowledge(); len(got) != 1 || got[0].Text != "user fact" {
		t.Errorf("Unexpected user knowledge: %v", got)
	}
	if got := s.AssistantKnowledge(); len(got) != 1 || got[0].Text != "assistant fact" {
		t.Errorf("Unexpected assistant knowledge: %v", got)
	}
	if got := s.UserKnowledge()[0].ID; got == s.AssistantKnowledge()[0].ID {
		t.Error("Expected distinct item ids across streams")
	}
}
