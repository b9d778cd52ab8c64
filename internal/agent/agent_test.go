package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"pulseboard/internal/history"
	"pulseboard/internal/llm"
	"pulseboard/internal/session"
	"pulseboard/internal/tools"
	"pulseboard/internal/widget"
)

type fakeClient struct {
	name     string
	native   bool
	result   *llm.Result
	err      error
	requests []llm.Request
}

func (f *fakeClient) Name() string      { return f.name }
func (f *fakeClient) Close() error      { return nil }
func (f *fakeClient) NativeTools() bool { return f.native }
func (f *fakeClient) Generate(_ context.Context, req llm.Request) (*llm.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeResolver struct {
	client   *fakeClient
	fallback *fakeClient
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (llm.Client, error) {
	return f.client, nil
}

func (f *fakeResolver) Fallback(_ context.Context) (llm.Client, error) {
	if f.fallback == nil {
		return nil, errors.New("no fallback")
	}
	return f.fallback, nil
}

func newTestAgent(t *testing.T, client *fakeClient) (*Agent, *fakeResolver) {
	t.Helper()
	docs, err := session.NewDocStore(8)
	if err != nil {
		t.Fatalf("NewDocStore: %v", err)
	}
	registry := tools.NewRegistry()
	tools.RegisterDefaultTools(registry)
	resolver := &fakeResolver{client: client}
	return &Agent{
		Catalog: resolver,
		History: history.NewMemoryStore(),
		Docs:    docs,
		Tools:   registry,
	}, resolver
}

func resolve(t *testing.T, a *Agent, command string) *Response {
	t.Helper()
	res, err := a.Resolve(context.Background(), Request{ConversationID: "c1", Command: command})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return res
}

func TestResolve_NativeToolCall(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{
		Text: "Here is your map.",
		Calls: []llm.ToolCall{{
			Name: "create_map",
			Args: json.RawMessage(`{"locations":[{"name":"Oslo","lat":59.9,"lon":10.7},{"name":"Lima","lat":-12,"lon":-77}]}`),
		}},
	}}
	a, _ := newTestAgent(t, client)

	res := resolve(t, a, "show oslo and lima on a map")
	if len(res.Widgets) != 2 {
		t.Fatalf("got %d widgets, want chat plus map", len(res.Widgets))
	}
	if res.Widgets[0].Type != widget.KindChat {
		t.Fatalf("first widget = %q", res.Widgets[0].Type)
	}
	if res.Widgets[1].Type != widget.KindMap {
		t.Fatalf("second widget = %q", res.Widgets[1].Type)
	}
	if res.Reply != "Here is your map." {
		t.Fatalf("reply = %q", res.Reply)
	}

	// Native providers get the tool declarations, not prompt text.
	req := client.requests[0]
	if len(req.Tools) == 0 {
		t.Fatal("native client got no tool declarations")
	}
	if strings.Contains(req.Prompt, "Available tools") {
		t.Fatal("native client prompt carries the spelled-out catalogue")
	}
}

func TestResolve_EnvelopeToolCall(t *testing.T) {
	client := &fakeClient{name: "rest", result: &llm.Result{
		Text: "```json\n{\"tool\":\"create_image\",\"args\":{\"prompt\":\"a lighthouse\"},\"reply\":\"Painting one now.\"}\n```",
	}}
	a, _ := newTestAgent(t, client)

	res := resolve(t, a, "draw a lighthouse")
	if len(res.Widgets) != 2 || res.Widgets[0].Type != widget.KindChat || res.Widgets[1].Type != widget.KindImage {
		t.Fatalf("widgets = %+v", res.Widgets)
	}
	if res.Reply != "Painting one now." {
		t.Fatalf("reply = %q", res.Reply)
	}

	// Non-native providers must see the catalogue in the prompt.
	if !strings.Contains(client.requests[0].Prompt, "Available tools") {
		t.Fatal("REST client prompt is missing the tool catalogue")
	}
}

func TestResolve_FreeTextBecomesChat(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{Text: "The Eiffel Tower is 330m tall."}}
	a, _ := newTestAgent(t, client)

	res := resolve(t, a, "how tall is the eiffel tower")
	if len(res.Widgets) != 1 || res.Widgets[0].Type != widget.KindChat {
		t.Fatalf("widgets = %+v", res.Widgets)
	}
}

func TestResolve_UnknownToolBecomesErrorWidget(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{
		Calls: []llm.ToolCall{{Name: "launch_rocket", Args: json.RawMessage(`{}`)}},
	}}
	a, _ := newTestAgent(t, client)

	res := resolve(t, a, "launch")
	p := res.Widgets[0].Payload.(widget.ErrorPayload)
	if p.Code != widget.CodeUnsupportedFn {
		t.Fatalf("code = %q", p.Code)
	}
}

func TestResolve_ToolErrorDoesNotKillSiblings(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{
		Text: "Two for you.",
		Calls: []llm.ToolCall{
			{Name: "create_map", Args: json.RawMessage(`{"locations":[{"name":"One","lat":1,"lon":1}]}`)},
			{Name: "create_image", Args: json.RawMessage(`{"prompt":"sunset"}`)},
		},
	}}
	a, _ := newTestAgent(t, client)

	res := resolve(t, a, "map and image")
	if len(res.Widgets) != 3 {
		t.Fatalf("got %d widgets, want chat + error + image", len(res.Widgets))
	}
	if res.Widgets[0].Type != widget.KindChat {
		t.Fatalf("first widget = %q", res.Widgets[0].Type)
	}
	errP := res.Widgets[1].Payload.(widget.ErrorPayload)
	if errP.Code != widget.CodeMapTooFewLocations {
		t.Fatalf("error code = %q", errP.Code)
	}
	if res.Widgets[2].Type != widget.KindImage {
		t.Fatalf("sibling lost: %+v", res.Widgets[2])
	}
}

func TestResolve_ModelNotFoundRetriesOnce(t *testing.T) {
	client := &fakeClient{name: "typo-model", native: true, err: errors.New("404 model not found: NOT_FOUND")}
	fallback := &fakeClient{name: "default", native: true, result: &llm.Result{Text: "Recovered."}}
	a, resolver := newTestAgent(t, client)
	resolver.fallback = fallback

	res := resolve(t, a, "hello")
	if res.Reply != "Recovered." {
		t.Fatalf("reply = %q", res.Reply)
	}
	if len(fallback.requests) != 1 {
		t.Fatalf("fallback called %d times", len(fallback.requests))
	}
}

func TestResolve_ProviderErrorBecomesServerErrorWidget(t *testing.T) {
	client := &fakeClient{name: "fake", err: errors.New("upstream exploded")}
	a, _ := newTestAgent(t, client)

	res := resolve(t, a, "hello")
	p := res.Widgets[0].Payload.(widget.ErrorPayload)
	if p.Code != widget.CodeServerError {
		t.Fatalf("code = %q", p.Code)
	}
}

func TestResolve_AppendsHistoryPair(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{Text: "Sure thing."}}
	a, _ := newTestAgent(t, client)

	resolve(t, a, "first command")

	msgs, _ := a.History.History(context.Background(), "c1")
	if len(msgs) != 2 {
		t.Fatalf("history length = %d", len(msgs))
	}
	if msgs[0].Role != history.RoleUser || msgs[0].Text() != "first command" {
		t.Fatalf("user turn = %+v", msgs[0])
	}
	if msgs[1].Role != history.RoleModel || msgs[1].Text() != "Sure thing." {
		t.Fatalf("model turn = %+v", msgs[1])
	}
}

func TestResolve_HistoryTextFallsBackWhenNoChat(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{
		Calls: []llm.ToolCall{{Name: "create_image", Args: json.RawMessage(`{"prompt":"dog"}`)}},
	}}
	a, _ := newTestAgent(t, client)

	resolve(t, a, "show a dog")
	msgs, _ := a.History.History(context.Background(), "c1")
	if msgs[1].Text() != fallbackModelText {
		t.Fatalf("model turn = %q", msgs[1].Text())
	}
}

func TestResolve_UploadsReachPromptHint(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{Text: "Got it."}}
	a, _ := newTestAgent(t, client)

	_, err := a.Resolve(context.Background(), Request{
		ConversationID: "c1",
		Command:        "chart my sales",
		Files: []UploadedFile{{
			Filename: "sales.csv",
			MIMEType: "text/csv",
			Content:  []byte("region,amount\nwest,10\n"),
		}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	prompt := client.requests[0].Prompt
	if !strings.Contains(prompt, "Uploaded docs: sales.csv") {
		t.Fatalf("prompt missing upload hint: %q", prompt)
	}
	if _, ok := a.Docs.Get("c1", "sales.csv"); !ok {
		t.Fatal("upload not stored in the conversation")
	}
}

func TestResolve_CorruptUploadBecomesErrorWidget(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{Text: "Got it."}}
	a, _ := newTestAgent(t, client)

	res, err := a.Resolve(context.Background(), Request{
		ConversationID: "c1",
		Command:        "chart my sales",
		Files: []UploadedFile{
			{
				Filename: "broken.xlsx",
				MIMEType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				Content:  []byte("this is not a workbook"),
			},
			{
				Filename: "sales.csv",
				MIMEType: "text/csv",
				Content:  []byte("region,amount\nwest,10\n"),
			},
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var errW *widget.Widget
	for i := range res.Widgets {
		if res.Widgets[i].Type == widget.KindError {
			errW = &res.Widgets[i]
			break
		}
	}
	if errW == nil {
		t.Fatalf("no error widget in batch: %+v", res.Widgets)
	}
	p := errW.Payload.(widget.ErrorPayload)
	if p.Code != widget.CodeValidationError || !strings.Contains(p.Message, "broken.xlsx") {
		t.Fatalf("error payload = %+v", p)
	}

	// The healthy sibling still lands in the session and the model still ran.
	if _, ok := a.Docs.Get("c1", "sales.csv"); !ok {
		t.Fatal("parseable upload not stored")
	}
	if _, ok := a.Docs.Get("c1", "broken.xlsx"); ok {
		t.Fatal("corrupt upload stored")
	}
	if len(client.requests) != 1 {
		t.Fatalf("model called %d times", len(client.requests))
	}
}

func TestResolve_EmptyModelOutputBecomesServerErrorWidget(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{}}
	a, _ := newTestAgent(t, client)

	res := resolve(t, a, "hello")
	p := res.Widgets[0].Payload.(widget.ErrorPayload)
	if p.Code != widget.CodeServerError {
		t.Fatalf("code = %q", p.Code)
	}
}

func TestResolve_NotifyReceivesBatch(t *testing.T) {
	client := &fakeClient{name: "fake", native: true, result: &llm.Result{Text: "Hi."}}
	a, _ := newTestAgent(t, client)

	var gotID string
	var gotWidgets []widget.Widget
	a.Notify = func(id string, ws []widget.Widget) {
		gotID, gotWidgets = id, ws
	}

	res := resolve(t, a, "hello")
	if gotID != "c1" || len(gotWidgets) != len(res.Widgets) {
		t.Fatalf("notify got %q / %d widgets", gotID, len(gotWidgets))
	}
}

func TestDecodeBase64_BothAlphabets(t *testing.T) {
	std := "aGVsbG8="
	if got, err := DecodeBase64(std); err != nil || string(got) != "hello" {
		t.Fatalf("std decode = %q, %v", got, err)
	}
	urlSafe := "PDw_Pz4-"
	if got, err := DecodeBase64(urlSafe); err != nil || string(got) != "<<??>>" {
		t.Fatalf("url decode = %q, %v", got, err)
	}
}
