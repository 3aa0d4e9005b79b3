package core

import "testing"

func TestConversationTurn_Complete(t *testing.T) {
	cases := []struct {
		user, agent string
		want        bool
	}{
		{"hi", "hello", true},
		{"", "hello", false},
		{"hi", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		turn := &ConversationTurn{UserInput: c.user, AgentResponse: c.agent}
		if got := turn.Complete(); got != c.want {
			t.Errorf("Complete() with (%q, %q) = %t, want %t", c.user, c.agent, got, c.want)
		}
	}
}

func TestProfileAnalysis_Empty(t *testing.T) {
	if !(&ProfileAnalysis{}).Empty() {
		t.Error("Zero analysis should be empty")
	}
	if (&ProfileAnalysis{Profile: "p"}).Empty() {
		t.Error("Analysis with a profile should not be empty")
	}
	if (&ProfileAnalysis{AssistantKnowledge: "k"}).Empty() {
		t.Error("Analysis with knowledge should not be empty")
	}
}
