package prompt

import (
	"strings"
	"testing"

	"voicebroker/internal/domain/transcript"
)

func TestBuild_NoHistory(t *testing.T) {
	got := Build(nil)
	if got != AgentInstructions {
		t.Error("empty history must yield the bare template")
	}
	if strings.Contains(got, "<conversation-history>") {
		t.Error("bare template must not carry a conversation-history block")
	}
}

func TestBuild_WithHistory(t *testing.T) {
	history := []transcript.Record{
		{Role: transcript.RoleUser, Text: "hello"},
		{Role: transcript.RoleAssistant, Text: "hi there"},
	}

	got := Build(history)

	if !strings.HasPrefix(got, AgentInstructions) {
		t.Error("instructions must start with the agent template")
	}
	if !strings.Contains(got, "<conversation-history>") || !strings.HasSuffix(got, "</conversation-history>") {
		t.Error("history block missing or unterminated")
	}
	if !strings.Contains(got, "<user>hello</user>") {
		t.Errorf("user turn missing from %q", got)
	}
	if !strings.Contains(got, "<assistant>hi there</assistant>") {
		t.Errorf("assistant turn missing from %q", got)
	}
}

func TestBuild_ErrorRecordsBecomeAssistantTurns(t *testing.T) {
	history := []transcript.Record{
		{Role: transcript.RoleError, Text: "upstream timeout"},
	}

	got := Build(history)

	if strings.Contains(got, "<error>") {
		t.Error("error role must not appear in assembled instructions")
	}
	if !strings.Contains(got, "<assistant>Error: upstream timeout</assistant>") {
		t.Errorf("error record not rewritten as assistant turn: %q", got)
	}
}

func TestBuild_AssembledFreshPerCall(t *testing.T) {
	first := Build([]transcript.Record{{Role: transcript.RoleUser, Text: "one"}})
	second := Build([]transcript.Record{
		{Role: transcript.RoleUser, Text: "one"},
		{Role: transcript.RoleAssistant, Text: "two"},
	})

	if first == second {
		t.Error("growing history must change the assembled instructions")
	}
}
