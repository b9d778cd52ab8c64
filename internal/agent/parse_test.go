package agent

import "testing"

func TestParseEnvelope_Plain(t *testing.T) {
	env, ok := ParseEnvelope(`{"tool":"create_map","args":{"locations":[]},"reply":"Here."}`)
	if !ok || env.Tool != "create_map" || env.Reply != "Here." {
		t.Fatalf("env = %+v, ok = %v", env, ok)
	}
}

func TestParseEnvelope_Fenced(t *testing.T) {
	text := "```json\n{\"tool\":\"chat_reply\",\"args\":{\"reply\":\"hi\"}}\n```"
	env, ok := ParseEnvelope(text)
	if !ok || env.Tool != "chat_reply" {
		t.Fatalf("env = %+v, ok = %v", env, ok)
	}
}

func TestParseEnvelope_ReplyOnly(t *testing.T) {
	env, ok := ParseEnvelope(`{"tool":"","reply":"Just an answer."}`)
	if !ok || env.Tool != "" || env.Reply != "Just an answer." {
		t.Fatalf("env = %+v, ok = %v", env, ok)
	}
}

func TestParseEnvelope_FreeTextRejected(t *testing.T) {
	for _, text := range []string{
		"The answer is 42.",
		"",
		`{"unrelated":"object"}`,
		"```\nnot json\n```",
	} {
		if env, ok := ParseEnvelope(text); ok {
			t.Fatalf("ParseEnvelope(%q) = %+v, want rejection", text, env)
		}
	}
}

func TestParseEnvelope_DoubleEncoded(t *testing.T) {
	env, ok := ParseEnvelope(`"{\"tool\":\"create_image\",\"reply\":\"ok\"}"`)
	if !ok || env.Tool != "create_image" {
		t.Fatalf("env = %+v, ok = %v", env, ok)
	}
}
