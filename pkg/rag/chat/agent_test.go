package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/llm"
)

type fakeEmbedder struct {
	calls     int
	taskTypes []string
	err       error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	f.taskTypes = append(f.taskTypes, taskType)
	if f.err != nil {
		return nil, f.err
	}
	// Deterministic vector: chunks mentioning "revenue" line up with
	// queries that mention it too.
	v := []float32{1, 0}
	if strings.Contains(strings.ToLower(text), "revenue") {
		v = []float32{0, 1}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: v},
	}, nil
}

type fakeLLM struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls = append(f.calls, history)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
}

func TestNewAgentIndexesArtifact(t *testing.T) {
	embedder := &fakeEmbedder{}
	agent, err := NewAgent("quarterly revenue grew strongly", &fakeLLM{reply: "ok"}, embedder)
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}

	if agent.Artifact() != "quarterly revenue grew strongly" {
		t.Errorf("Artifact = %q", agent.Artifact())
	}
	if agent.ConversationID() == "" {
		t.Error("ConversationID is empty")
	}
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1 for a single-chunk artifact", embedder.calls)
	}
	if embedder.taskTypes[0] != embedding.TaskRetrievalDocument {
		t.Errorf("task type = %q, want %q", embedder.taskTypes[0], embedding.TaskRetrievalDocument)
	}
}

func TestNewAgentPropagatesEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	if _, err := NewAgent("some artifact", &fakeLLM{}, embedder); err == nil {
		t.Fatal("expected error")
	}
}

func TestChatGroundsPromptInRetrievedChunks(t *testing.T) {
	embedder := &fakeEmbedder{}
	model := &fakeLLM{reply: "Revenue grew 12% year over year."}

	agent, err := NewAgent("quarterly revenue grew strongly", model, embedder)
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}

	reply, err := agent.Chat(context.Background(), "how did revenue develop?")
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if reply != model.reply {
		t.Errorf("reply = %q, want %q", reply, model.reply)
	}

	// The query embedding must use the query task type.
	last := embedder.taskTypes[len(embedder.taskTypes)-1]
	if last != embedding.TaskRetrievalQuery {
		t.Errorf("query task type = %q, want %q", last, embedding.TaskRetrievalQuery)
	}

	if len(model.calls) != 1 {
		t.Fatalf("model calls = %d, want 1", len(model.calls))
	}
	prompt := model.calls[0][len(model.calls[0])-1].Content
	if !strings.Contains(prompt, "quarterly revenue grew strongly") {
		t.Error("prompt does not contain the retrieved chunk")
	}
	if !strings.Contains(prompt, "how did revenue develop?") {
		t.Error("prompt does not contain the user question")
	}
}

func TestChatCarriesHistoryAcrossTurns(t *testing.T) {
	embedder := &fakeEmbedder{}
	model := &fakeLLM{reply: "answer"}

	agent, err := NewAgent("revenue artifact", model, embedder)
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}

	ctx := context.Background()
	if _, err := agent.Chat(ctx, "first question"); err != nil {
		t.Fatalf("first Chat error: %v", err)
	}
	if _, err := agent.Chat(ctx, "second question"); err != nil {
		t.Fatalf("second Chat error: %v", err)
	}

	// First call: only the composed prompt. Second call: prior user turn,
	// prior assistant reply, then the new prompt.
	if got := len(model.calls[0]); got != 1 {
		t.Errorf("first call history length = %d, want 1", got)
	}
	if got := len(model.calls[1]); got != 3 {
		t.Errorf("second call history length = %d, want 3", got)
	}
	if model.calls[1][0].Content != "first question" {
		t.Errorf("history[0] = %q, want the raw first question", model.calls[1][0].Content)
	}
	if model.calls[1][1].Role != "assistant" {
		t.Errorf("history[1] role = %q, want assistant", model.calls[1][1].Role)
	}
}

func TestChatModelFailureLeavesHistoryUntouched(t *testing.T) {
	embedder := &fakeEmbedder{}
	model := &fakeLLM{err: errors.New("model unavailable")}

	agent, err := NewAgent("revenue artifact", model, embedder)
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}

	ctx := context.Background()
	if _, err := agent.Chat(ctx, "doomed question"); err == nil {
		t.Fatal("expected error")
	}

	model.err = nil
	model.reply = "fine now"
	if _, err := agent.Chat(ctx, "retry question"); err != nil {
		t.Fatalf("retry Chat error: %v", err)
	}

	// The failed turn must not appear in history.
	if got := len(model.calls[1]); got != 1 {
		t.Errorf("history length after failed turn = %d, want 1", got)
	}
}
