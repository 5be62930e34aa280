package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/mdkaba/campusmind/internal/agent"
	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/models"
)

// fakeAgent scores and answers with fixed values.
type fakeAgent struct {
	name      string
	score     float64
	reply     string
	err       error
	retrieval bool

	gotBundle  *agent.ContextBundle
	gotHistory []models.Message
	responded  int
}

func (f *fakeAgent) Name() string         { return f.name }
func (f *fakeAgent) NeedsRetrieval() bool { return f.retrieval }

func (f *fakeAgent) Score(context.Context, string, []models.Message) float64 {
	return f.score
}

func (f *fakeAgent) Respond(_ context.Context, _ string, history []models.Message, bundle *agent.ContextBundle) (string, error) {
	f.responded++
	f.gotBundle = bundle
	f.gotHistory = history
	return f.reply, f.err
}

// memoryHistory is an in-memory HistoryStore.
type memoryHistory struct {
	conversations map[string]*models.Conversation
	messages      map[string][]models.Message
	nextID        int
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]models.Message),
	}
}

func (m *memoryHistory) GetOrCreateConversation(_ context.Context, id string, title *string) (*models.Conversation, error) {
	if conv, ok := m.conversations[id]; ok {
		return conv, nil
	}
	m.nextID++
	newID := fmt.Sprintf("conv-%d", m.nextID)
	conv := &models.Conversation{
		ID:    surrealmodels.RecordID{Table: "conversation", ID: newID},
		Title: title,
	}
	m.conversations[newID] = conv
	return conv, nil
}

func (m *memoryHistory) AppendMessage(_ context.Context, conversationID, role, content string) (*models.Message, error) {
	msg := models.Message{Role: role, Content: content}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	return &msg, nil
}

func (m *memoryHistory) RecentMessages(_ context.Context, conversationID string, limit int) ([]models.Message, error) {
	msgs := m.messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (m *memoryHistory) ListConversations(context.Context, int) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range m.conversations {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memoryHistory) ConversationMessages(_ context.Context, conversationID string) ([]models.Message, error) {
	return m.messages[conversationID], nil
}

type fakeRetriever struct {
	chunks  []models.RetrievedChunk
	err     error
	queries []string
}

func (f *fakeRetriever) Search(_ context.Context, query string, _ int) ([]models.RetrievedChunk, error) {
	f.queries = append(f.queries, query)
	return f.chunks, f.err
}

func newTestService(t *testing.T, agents []agent.Agent, retriever Retriever) (*ChatService, *memoryHistory) {
	t.Helper()
	history := newMemoryHistory()
	svc, err := NewChatService(agents, history, retriever, nil, nil, ChatOptions{})
	if err != nil {
		t.Fatalf("NewChatService: %v", err)
	}
	return svc, history
}

func TestHandleRoutesToHighestScorer(t *testing.T) {
	low := &fakeAgent{name: "low", score: 0.3, reply: "from low"}
	high := &fakeAgent{name: "high", score: 0.9, reply: "from high"}
	svc, _ := newTestService(t, []agent.Agent{low, high}, &fakeRetriever{})

	result, err := svc.Handle(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.AgentName != "high" || result.Response != "from high" {
		t.Errorf("routed to %s with %q", result.AgentName, result.Response)
	}
	if low.responded != 0 {
		t.Error("losing agent must not respond")
	}
}

func TestHandleTieGoesToFirstRegistered(t *testing.T) {
	first := &fakeAgent{name: "first", score: 0.5, reply: "a"}
	second := &fakeAgent{name: "second", score: 0.5, reply: "b"}
	svc, _ := newTestService(t, []agent.Agent{first, second}, &fakeRetriever{})

	result, err := svc.Handle(context.Background(), "hello", "")
	if err != nil {
		t.Fatal(err)
	}
	if result.AgentName != "first" {
		t.Errorf("tie routed to %s, want first", result.AgentName)
	}
}

func TestHandlePersistsBothTurns(t *testing.T) {
	a := &fakeAgent{name: "a", score: 1, reply: "the answer"}
	svc, history := newTestService(t, []agent.Agent{a}, &fakeRetriever{})

	result, err := svc.Handle(context.Background(), "the question", "")
	if err != nil {
		t.Fatal(err)
	}

	msgs := history.messages[result.ConversationID]
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "the question" {
		t.Errorf("unexpected user turn %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant || msgs[1].Content != "the answer" {
		t.Errorf("unexpected assistant turn %+v", msgs[1])
	}
}

func TestHandleContinuesConversation(t *testing.T) {
	a := &fakeAgent{name: "a", score: 1, reply: "reply"}
	svc, _ := newTestService(t, []agent.Agent{a}, &fakeRetriever{})

	first, err := svc.Handle(context.Background(), "turn one", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Handle(context.Background(), "turn two", first.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("conversation not continued: %s != %s", second.ConversationID, first.ConversationID)
	}

	// The second turn's agent sees the first exchange plus the new query,
	// which was persisted before selection.
	if len(a.gotHistory) != 3 {
		t.Fatalf("agent saw %d history messages, want 3", len(a.gotHistory))
	}
	if a.gotHistory[0].Content != "turn one" || a.gotHistory[2].Content != "turn two" {
		t.Errorf("unexpected history %+v", a.gotHistory)
	}
}

func TestHandleUnknownConversationStartsFresh(t *testing.T) {
	a := &fakeAgent{name: "a", score: 1, reply: "reply"}
	svc, _ := newTestService(t, []agent.Agent{a}, &fakeRetriever{})

	result, err := svc.Handle(context.Background(), "hello", "does-not-exist")
	if err != nil {
		t.Fatalf("unknown conversation must not fail: %v", err)
	}
	if result.ConversationID == "does-not-exist" {
		t.Error("expected a fresh conversation id")
	}
}

func TestHandleRetrievesOnlyWhenNeeded(t *testing.T) {
	retriever := &fakeRetriever{chunks: []models.RetrievedChunk{
		{Document: models.Document{Content: "chunk", Metadata: map[string]string{"source": "https://x.test"}}},
	}}

	rag := &fakeAgent{name: "rag", score: 0.9, reply: "grounded", retrieval: true}
	plain := &fakeAgent{name: "plain", score: 0.1, reply: "plain"}
	svc, _ := newTestService(t, []agent.Agent{plain, rag}, retriever)

	result, err := svc.Handle(context.Background(), "admissions question", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(retriever.queries) != 1 {
		t.Fatalf("retriever called %d times, want 1", len(retriever.queries))
	}
	if rag.gotBundle.Empty() {
		t.Error("rag agent did not receive the retrieved chunks")
	}
	if len(result.ContextSources) != 1 || result.ContextSources[0] != "https://x.test" {
		t.Errorf("unexpected context sources %v", result.ContextSources)
	}

	// A non-retrieval winner must not trigger retrieval.
	retriever.queries = nil
	rag.score = 0.1
	plain.score = 0.9
	if _, err := svc.Handle(context.Background(), "general question", ""); err != nil {
		t.Fatal(err)
	}
	if len(retriever.queries) != 0 {
		t.Error("retriever called for non-retrieval agent")
	}
}

func TestHandleRetrievalFailureDegrades(t *testing.T) {
	retriever := &fakeRetriever{err: fmt.Errorf("embedding backend down")}
	rag := &fakeAgent{name: "rag", score: 0.9, reply: "honest apology", retrieval: true}
	svc, _ := newTestService(t, []agent.Agent{rag}, retriever)

	result, err := svc.Handle(context.Background(), "question", "")
	if err != nil {
		t.Fatalf("retrieval failure must not fail the request: %v", err)
	}
	if !rag.gotBundle.Empty() {
		t.Error("expected empty bundle on retrieval failure")
	}
	if len(result.ContextSources) != 0 {
		t.Errorf("unexpected sources %v", result.ContextSources)
	}
}

func TestHandleGenerationFailurePropagates(t *testing.T) {
	a := &fakeAgent{name: "a", score: 1, err: fmt.Errorf("model unavailable")}
	svc, history := newTestService(t, []agent.Agent{a}, &fakeRetriever{})

	_, err := svc.Handle(context.Background(), "question", "")
	if err == nil {
		t.Fatal("expected generation error to propagate")
	}

	// The user turn is still on record.
	for _, msgs := range history.messages {
		if len(msgs) != 1 || msgs[0].Role != models.RoleUser {
			t.Errorf("unexpected persisted messages %+v", msgs)
		}
	}
}

func TestNewChatServiceRequiresAgents(t *testing.T) {
	if _, err := NewChatService(nil, newMemoryHistory(), &fakeRetriever{}, nil, nil, ChatOptions{}); err == nil {
		t.Fatal("expected error for empty agent registry")
	}
}

func TestStatsCountSelections(t *testing.T) {
	a := &fakeAgent{name: "a", score: 1, reply: "ok"}
	svc, _ := newTestService(t, []agent.Agent{a}, &fakeRetriever{})

	for range 3 {
		if _, err := svc.Handle(context.Background(), "q", ""); err != nil {
			t.Fatal(err)
		}
	}

	snap := svc.Stats()
	if snap.AgentSelections["a"] != 3 {
		t.Errorf("selection count = %d, want 3", snap.AgentSelections["a"])
	}
	if snap.Operations[metrics.OpGeneration].Count != 3 {
		t.Errorf("generation count = %d, want 3", snap.Operations[metrics.OpGeneration].Count)
	}
}

func TestHandleTitlesNewConversationFromQuery(t *testing.T) {
	a := &fakeAgent{name: "general", score: 0.5, reply: "ok"}
	svc, history := newTestService(t, []agent.Agent{a}, &fakeRetriever{})

	result, err := svc.Handle(context.Background(), "  What are the   admission requirements?  ", "")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	conv := history.conversations[result.ConversationID]
	if conv.Title == nil || *conv.Title != "What are the admission requirements?" {
		t.Errorf("title = %v", conv.Title)
	}

	long := strings.Repeat("requirements ", 10)
	longResult, err := svc.Handle(context.Background(), long, "")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	longConv := history.conversations[longResult.ConversationID]
	if longConv.Title == nil || len([]rune(*longConv.Title)) > 61 {
		t.Errorf("long title not truncated: %v", longConv.Title)
	}
}
