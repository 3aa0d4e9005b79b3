package core

// ProfileAnalysis holds the output of a profile/knowledge analysis pass over
// recent conversation. It is consumed by the long-term knowledge promoter.
//
// Analysis models frequently emit the literal "None" (in various casings and
// bullet forms) for sections with nothing to report; the promoter filters
// those out rather than storing them.
type ProfileAnalysis struct {
	// Profile is updated descriptive text about the user. Non-trivial text
	// replaces the stored profile.
	Profile string `json:"profile"`

	// PrivateKnowledge is newline-separated facts the user shared about
	// themselves or their world.
	PrivateKnowledge string `json:"private"`

	// AssistantKnowledge is newline-separated facts about how the assistant
	// should operate for this user.
	AssistantKnowledge string `json:"assistant_knowledge"`
}

// Empty reports whether the analysis carries nothing to promote.
func (a *ProfileAnalysis) Empty() bool {
	return a == nil || (a.Profile == "" && a.PrivateKnowledge == "" && a.AssistantKnowledge == "")
}
