package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/websocket"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/events"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/report"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeConn struct {
	wrote chan string
}

func newFakeConn() *fakeConn {
	return &fakeConn{wrote: make(chan string, 64)}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.wrote <- string(data)
	return nil
}

func (c *fakeConn) waitFrame(t *testing.T) string {
	t.Helper()
	select {
	case frame := <-c.wrote:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return ""
	}
}

func (c *fakeConn) assertSilent(t *testing.T) {
	t.Helper()
	select {
	case frame := <-c.wrote:
		t.Fatalf("unexpected frame: %s", frame)
	case <-time.After(100 * time.Millisecond):
	}
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) eventTypes(t *testing.T) []string {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, raw := range p.payloads {
		var msg dto.ResearchEventMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("bad lifecycle payload: %v", err)
		}
		types = append(types, msg.EventType)
	}
	return types
}

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.Generate(ctx, "", options...)
}

func (f *fakeLLM) setReply(reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

type fakeEmbedder struct {
	mu       sync.Mutex
	docCalls int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if taskType == embedding.TaskRetrievalDocument {
		f.docCalls++
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}},
	}, nil
}

func (f *fakeEmbedder) documentCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docCalls
}

func newTestService(model *fakeLLM, embedder *fakeEmbedder, pub *fakePublisher) (IResearcherService, *websocket.Manager) {
	manager := websocket.NewManager(nopLogger{})
	svc := NewResearcherService(manager, pub, model, embedder, nopLogger{})
	return svc, manager
}

func TestRunRequestRejectsInvalidToneWithoutSideEffects(t *testing.T) {
	pub := &fakePublisher{}
	model := &fakeLLM{reply: "unused"}
	svc, manager := newTestService(model, &fakeEmbedder{}, pub)

	conn := newFakeConn()
	manager.Connect(conn)
	defer manager.Disconnect(conn)

	_, err := svc.RunRequest(context.Background(), &dto.ResearchRequest{
		Task: "what is quantum computing",
		Tone: "Whimsical",
	}, conn)

	var verr *report.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "tone", verr.Field)

	assert.Empty(t, pub.eventTypes(t), "no lifecycle events for a rejected request")
	assert.Zero(t, model.calls, "no strategy must run for a rejected request")
	conn.assertSilent(t)
}

func TestRunRequestRejectsMissingTask(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{}, &fakeEmbedder{}, &fakePublisher{})

	_, err := svc.RunRequest(context.Background(), &dto.ResearchRequest{}, nil)

	var fieldErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &fieldErrs)
}

func TestRunRequestStreamsProgressAndReturnsReport(t *testing.T) {
	pub := &fakePublisher{}
	model := &fakeLLM{reply: "THE REPORT"}
	svc, manager := newTestService(model, &fakeEmbedder{}, pub)

	conn := newFakeConn()
	manager.Connect(conn)
	defer manager.Disconnect(conn)

	res, err := svc.RunRequest(context.Background(), &dto.ResearchRequest{
		Task: "what is quantum computing",
	}, conn)

	assert.NoError(t, err)
	assert.Equal(t, "THE REPORT", res)

	// The basic strategy emits two log events and one report event,
	// forwarded to the connection in order.
	var seen []report.ProgressEvent
	for i := 0; i < 3; i++ {
		var ev report.ProgressEvent
		assert.NoError(t, json.Unmarshal([]byte(conn.waitFrame(t)), &ev))
		seen = append(seen, ev)
	}
	assert.Equal(t, "logs", seen[0].Type)
	assert.Equal(t, "logs", seen[1].Type)
	assert.Equal(t, "report", seen[2].Type)
	assert.Equal(t, "THE REPORT", seen[2].Output)

	assert.Equal(t, []string{events.ResearchStarted, events.ResearchCompleted}, pub.eventTypes(t))
}

func TestRunRequestWithoutConnDiscardsProgress(t *testing.T) {
	pub := &fakePublisher{}
	model := &fakeLLM{reply: "quiet report"}
	svc, _ := newTestService(model, &fakeEmbedder{}, pub)

	res, err := svc.RunRequest(context.Background(), &dto.ResearchRequest{
		Task: "silent research",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "quiet report", res)
	assert.Equal(t, []string{events.ResearchStarted, events.ResearchCompleted}, pub.eventTypes(t))
}

func TestRunRequestWrapsStrategyFailure(t *testing.T) {
	pub := &fakePublisher{}
	model := &fakeLLM{err: errors.New("model is down")}
	svc, _ := newTestService(model, &fakeEmbedder{}, pub)

	_, err := svc.RunRequest(context.Background(), &dto.ResearchRequest{
		Task: "doomed research",
	}, nil)

	var execErr *report.ExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.Equal(t, report.TypeResearch, execErr.Type)
	assert.ErrorContains(t, err, "model is down")

	assert.Equal(t, []string{events.ResearchStarted, events.ResearchFailed}, pub.eventTypes(t))
}

func TestChatWithoutKnowledgeReturnsFixedNotice(t *testing.T) {
	svc, manager := newTestService(&fakeLLM{}, &fakeEmbedder{}, &fakePublisher{})

	conn := newFakeConn()
	manager.Connect(conn)
	defer manager.Disconnect(conn)

	assert.NoError(t, svc.Chat(context.Background(), "anything there?", conn))

	var ev dto.ChatEvent
	assert.NoError(t, json.Unmarshal([]byte(conn.waitFrame(t)), &ev))
	assert.Equal(t, "chat", ev.Type)
	assert.Equal(t, noKnowledgeReply, ev.Content)
}

func TestChatUsesLatestArtifact(t *testing.T) {
	model := &fakeLLM{reply: "first report"}
	embedder := &fakeEmbedder{}
	svc, manager := newTestService(model, embedder, &fakePublisher{})

	conn := newFakeConn()
	manager.Connect(conn)
	defer manager.Disconnect(conn)

	ctx := context.Background()
	req := &dto.ResearchRequest{Task: "research once"}

	_, err := svc.RunRequest(ctx, req, nil)
	assert.NoError(t, err)

	model.setReply("grounded answer")
	assert.NoError(t, svc.Chat(ctx, "what did you find?", conn))

	var ev dto.ChatEvent
	assert.NoError(t, json.Unmarshal([]byte(conn.waitFrame(t)), &ev))
	assert.Equal(t, "grounded answer", ev.Content)
	assert.Equal(t, 1, embedder.documentCalls(), "one chunk indexed for the artifact")

	// Another chat against the same artifact reuses the session.
	assert.NoError(t, svc.Chat(ctx, "and another question", conn))
	conn.waitFrame(t)
	assert.Equal(t, 1, embedder.documentCalls(), "session must not be rebuilt for the same artifact")
}

func TestNewReportRefreshesChatSession(t *testing.T) {
	model := &fakeLLM{reply: "report one"}
	embedder := &fakeEmbedder{}
	svc, manager := newTestService(model, embedder, &fakePublisher{})

	conn := newFakeConn()
	manager.Connect(conn)
	defer manager.Disconnect(conn)

	ctx := context.Background()

	_, err := svc.RunRequest(ctx, &dto.ResearchRequest{Task: "first run"}, nil)
	assert.NoError(t, err)
	assert.NoError(t, svc.Chat(ctx, "q1", conn))
	conn.waitFrame(t)
	assert.Equal(t, 1, embedder.documentCalls())

	model.setReply("report two")
	_, err = svc.RunRequest(ctx, &dto.ResearchRequest{Task: "second run"}, nil)
	assert.NoError(t, err)

	assert.NoError(t, svc.Chat(ctx, "q2", conn))
	conn.waitFrame(t)
	assert.Equal(t, 2, embedder.documentCalls(), "new artifact must rebuild the chat session")
}

func TestHandleStartMalformedPayloadIsSwallowed(t *testing.T) {
	pub := &fakePublisher{}
	svc, manager := newTestService(&fakeLLM{reply: "x"}, &fakeEmbedder{}, pub)

	conn := newFakeConn()
	manager.Connect(conn)
	defer manager.Disconnect(conn)

	svc.HandleStart(context.Background(), []byte("{not json"), conn)

	assert.Empty(t, pub.eventTypes(t))
	conn.assertSilent(t)
}

func TestHandleChatForwardsReply(t *testing.T) {
	model := &fakeLLM{reply: "the artifact"}
	svc, manager := newTestService(model, &fakeEmbedder{}, &fakePublisher{})

	conn := newFakeConn()
	manager.Connect(conn)
	defer manager.Disconnect(conn)

	ctx := context.Background()
	_, err := svc.RunRequest(ctx, &dto.ResearchRequest{Task: "run"}, nil)
	assert.NoError(t, err)

	model.setReply("chat reply")
	svc.HandleChat(ctx, "question", conn)

	var ev dto.ChatEvent
	assert.NoError(t, json.Unmarshal([]byte(conn.waitFrame(t)), &ev))
	assert.Equal(t, "chat reply", ev.Content)
}
