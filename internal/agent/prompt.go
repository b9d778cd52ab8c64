package agent

import (
	"fmt"
	"strings"

	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
)

const systemInstruction = `You are the assistant behind a live dashboard. The user types commands in
natural language; you respond by calling exactly one of the provided tools
to place a widget on the dashboard, or by answering conversationally when
no widget fits.

Rules:
- Prefer a tool call whenever the command asks to show, chart, plot,
  display or analyze something.
- When the user has uploaded a document and asks about its contents, use
  the document-aware tools with the exact uploaded filename.
- Keep conversational replies short and direct.`

// composePrompt builds the user-turn prompt: the raw command plus a hint
// listing the conversation's uploaded documents so the model references
// them by their exact filenames.
func composePrompt(command string, docNames []string) string {
	var b strings.Builder
	b.WriteString(command)
	if len(docNames) > 0 {
		fmt.Fprintf(&b, "\n\nNote: Uploaded docs: %s. Use source=\"document\" and the exact filename when charting or analyzing them.",
			strings.Join(docNames, ", "))
	}
	return b.String()
}

// envelopeInstructions spells the tool catalogue out for providers without
// native function calling, asking for a single JSON envelope in return.
func envelopeInstructions(decls []llm.ToolDecl) string {
	var b strings.Builder
	b.WriteString("\n\nAvailable tools:\n")
	for _, d := range decls {
		params, _ := jsonutil.MarshalNoEscape(d.Parameters)
		fmt.Fprintf(&b, "- %s: %s\n  parameters: %s\n", d.Name, d.Description, params)
	}
	b.WriteString(`
To call a tool, reply with ONLY this JSON object and nothing else:
{"tool": "<tool name>", "args": {<arguments>}, "reply": "<short message to the user>"}
To answer without a widget, reply with:
{"tool": "", "reply": "<your answer>"}`)
	return b.String()
}
