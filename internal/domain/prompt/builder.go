package prompt

import (
	"fmt"
	"strings"

	"voicebroker/internal/domain/transcript"
)

// Build concatenates the agent template with a tagged transcript of prior
// turns. Error records are rewritten as assistant turns so the upstream
// model sees them as part of the conversation rather than as protocol noise.
// The result is assembled fresh per call; history grows between offers.
func Build(history []transcript.Record) string {
	if len(history) == 0 {
		return AgentInstructions
	}

	var b strings.Builder
	b.WriteString(AgentInstructions)
	b.WriteString("\n\n<conversation-history>\n")
	for _, rec := range history {
		role := rec.Role
		text := rec.Text
		if role == transcript.RoleError {
			role = transcript.RoleAssistant
			text = "Error: " + text
		}
		fmt.Fprintf(&b, "<%s>%s</%s>\n", role, text, role)
	}
	b.WriteString("</conversation-history>")
	return b.String()
}
