package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/websocket"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/events"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/rag/chat"
	"ai-research-be/pkg/report"

	"github.com/google/uuid"
)

const noKnowledgeReply = "Knowledge empty, please run the research first to obtain knowledge"

type IResearcherService interface {
	RunRequest(ctx context.Context, req *dto.ResearchRequest, conn websocket.Conn) (string, error)
	Chat(ctx context.Context, message string, conn websocket.Conn) error

	// Dispatcher methods for the websocket read loop.
	HandleStart(ctx context.Context, payload []byte, conn websocket.Conn)
	HandleChat(ctx context.Context, message string, conn websocket.Conn)
}

// researcherService orchestrates research jobs: it validates the request,
// picks the strategy for the requested report type, streams progress into
// the caller's connection and retains the finished artifact for chat.
//
// The artifact and chat agent are a single shared slot: the latest
// completed report wins, whichever connection produced it. The chat agent
// is rebuilt lazily on the first chat after the artifact changes.
type researcherService struct {
	generators map[report.Type]report.Generator
	manager    *websocket.Manager
	publisher  IPublisherService
	llm        llm.LLMProvider
	embedder   embedding.EmbeddingProvider
	logger     logger.ILogger

	mu        sync.Mutex
	artifact  string
	chatAgent *chat.Agent
}

func NewResearcherService(
	manager *websocket.Manager,
	publisher IPublisherService,
	llmProvider llm.LLMProvider,
	embedder embedding.EmbeddingProvider,
	log logger.ILogger,
) IResearcherService {
	return &researcherService{
		generators: map[report.Type]report.Generator{
			report.TypeResearch:    report.NewBasicGenerator(llmProvider),
			report.TypeDetailed:    report.NewDetailedGenerator(llmProvider),
			report.TypeMultiAgents: report.NewMultiAgentGenerator(llmProvider),
		},
		manager:   manager,
		publisher: publisher,
		llm:       llmProvider,
		embedder:  embedder,
		logger:    log,
	}
}

// RunRequest executes one research job to completion and returns the
// report text. Validation happens before any observable side effect, so a
// bad request leaves no events and no progress behind. conn may be nil
// for the non-streaming path.
func (s *researcherService) RunRequest(ctx context.Context, req *dto.ResearchRequest, conn websocket.Conn) (string, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return "", err
	}

	tone, err := report.ParseTone(req.Tone)
	if err != nil {
		return "", err
	}
	source, err := report.ParseSource(req.ReportSource)
	if err != nil {
		return "", err
	}
	reportType := report.NormalizeType(req.ReportType)

	jobID := uuid.NewString()

	task := report.Task{
		Query:        req.Task,
		Type:         reportType,
		Source:       source,
		SourceURLs:   req.SourceURLs,
		DocumentURLs: req.DocumentURLs,
		Tone:         tone,
		Headers:      req.Headers,
	}

	sink := report.Discard
	if conn != nil {
		sink = report.SinkFunc(func(ev report.ProgressEvent) {
			payload, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warn("ResearcherService", "Failed to marshal progress event", map[string]interface{}{"error": err.Error()})
				return
			}
			s.manager.Enqueue(conn, payload)
		})
	}

	s.publishLifecycle(ctx, events.ResearchStarted, jobID, req, "")
	s.logger.Info("ResearcherService", "Research job started", map[string]interface{}{
		"job_id": jobID,
		"type":   string(reportType),
		"source": string(source),
	})

	generator := s.generators[reportType]
	result, err := generator.Run(ctx, task, sink)
	if err != nil {
		execErr := &report.ExecutionError{Type: reportType, Err: err}
		s.publishLifecycle(ctx, events.ResearchFailed, jobID, req, execErr.Error())
		s.logger.Error("ResearcherService", "Research job failed", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
		return "", execErr
	}

	s.mu.Lock()
	s.artifact = result.Report
	s.mu.Unlock()

	s.publishLifecycle(ctx, events.ResearchCompleted, jobID, req, "")
	s.logger.Info("ResearcherService", "Research job completed", map[string]interface{}{
		"job_id":      jobID,
		"report_size": len(result.Report),
	})

	return result.Report, nil
}

// Chat answers a follow-up question against the latest completed report.
// Without an artifact it replies with a fixed notice instead of failing.
func (s *researcherService) Chat(ctx context.Context, message string, conn websocket.Conn) error {
	s.mu.Lock()
	artifact := s.artifact
	s.mu.Unlock()

	if artifact == "" {
		s.enqueueChat(conn, noKnowledgeReply)
		return nil
	}

	agent, err := s.ensureAgent(artifact)
	if err != nil {
		return err
	}

	reply, err := agent.Chat(ctx, message)
	if err != nil {
		return err
	}

	s.enqueueChat(conn, reply)
	return nil
}

// ensureAgent returns the current chat agent, rebuilding it when the
// artifact it was grounded in is no longer the latest one.
func (s *researcherService) ensureAgent(artifact string) (*chat.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chatAgent != nil && s.chatAgent.Artifact() == artifact {
		return s.chatAgent, nil
	}

	agent, err := chat.NewAgent(artifact, s.llm, s.embedder)
	if err != nil {
		return nil, err
	}

	s.chatAgent = agent
	s.logger.Info("ResearcherService", "Chat session created", map[string]interface{}{
		"conversation_id": agent.ConversationID(),
	})
	return agent, nil
}

func (s *researcherService) enqueueChat(conn websocket.Conn, content string) {
	if conn == nil {
		return
	}
	payload, err := json.Marshal(dto.ChatEvent{Type: "chat", Content: content})
	if err != nil {
		return
	}
	s.manager.Enqueue(conn, payload)
}

// publishLifecycle is best-effort: bus trouble is logged, never surfaced
// to the job.
func (s *researcherService) publishLifecycle(ctx context.Context, eventType, jobID string, req *dto.ResearchRequest, errMsg string) {
	if s.publisher == nil {
		return
	}

	msg := dto.ResearchEventMessage{
		EventType:  eventType,
		JobID:      jobID,
		Query:      req.Task,
		ReportType: req.ReportType,
		Error:      errMsg,
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Warn("ResearcherService", "Failed to publish lifecycle event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

// HandleStart decodes a "start" frame and runs the job on the read-loop
// goroutine, matching the one-command-at-a-time connection contract.
func (s *researcherService) HandleStart(ctx context.Context, payload []byte, conn websocket.Conn) {
	var req dto.ResearchRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.logger.Warn("ResearcherService", "Malformed start payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if _, err := s.RunRequest(ctx, &req, conn); err != nil {
		s.logger.Error("ResearcherService", "Streaming research request failed", map[string]interface{}{"error": err.Error()})
	}
}

// HandleChat answers a "chat" frame. The payload is either plain text or
// a JSON object carrying a "message" field.
func (s *researcherService) HandleChat(ctx context.Context, message string, conn websocket.Conn) {
	var wrapped struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(message), &wrapped); err == nil && wrapped.Message != "" {
		message = wrapped.Message
	}

	if err := s.Chat(ctx, message, conn); err != nil {
		s.logger.Error("ResearcherService", "Chat request failed", map[string]interface{}{"error": err.Error()})
	}
}
