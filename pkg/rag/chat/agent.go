package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/rag/memory"
	"ai-research-be/pkg/utils"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	chunkSize    = 1024
	chunkOverlap = 20
	retrievalK   = 4

	historyTTL     = 1 * time.Hour
	historyCleanup = 10 * time.Minute
)

// Agent answers follow-up questions grounded in one report artifact.
// It owns a read-only chunk index built from the artifact and a
// conversation history keyed by its conversation id. A new artifact
// means a new Agent: history never carries across reports.
type Agent struct {
	artifact       string
	conversationID string
	index          *memory.VectorIndex
	provider       llm.LLMProvider
	embedder       embedding.EmbeddingProvider
	history        *cache.Cache
}

// NewAgent splits the artifact, embeds every chunk and builds the index.
// The returned agent carries a fresh conversation id.
func NewAgent(artifact string, provider llm.LLMProvider, embedder embedding.EmbeddingProvider) (*Agent, error) {
	index := memory.NewVectorIndex()

	chunks := utils.SplitText(artifact, chunkSize, chunkOverlap)
	for i, chunk := range chunks {
		res, err := embedder.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		index.Add(memory.Chunk{
			Text:   chunk,
			Index:  i,
			Vector: res.Embedding.Values,
		})
	}

	return &Agent{
		artifact:       artifact,
		conversationID: uuid.NewString(),
		index:          index,
		provider:       provider,
		embedder:       embedder,
		history:        cache.New(historyTTL, historyCleanup),
	}, nil
}

// Artifact returns the report text this agent is grounded in.
func (a *Agent) Artifact() string {
	return a.artifact
}

// ConversationID identifies this session's conversation thread.
func (a *Agent) ConversationID() string {
	return a.conversationID
}

// Chat retrieves the chunks most similar to message, asks the model with
// them as grounding context and returns the reply. Retrieval or model
// failures propagate; nothing is recorded in history on failure.
func (a *Agent) Chat(ctx context.Context, message string) (string, error) {
	queryRes, err := a.embedder.Generate(message, embedding.TaskRetrievalQuery)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	top := a.index.TopK(queryRes.Embedding.Values, retrievalK)

	prompt := buildAnalystPrompt(top, message)

	messages := append(a.loadHistory(), llm.Message{Role: "user", Content: prompt})
	reply, err := a.provider.Chat(ctx, messages, llm.WithTemperature(0.35))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	a.appendHistory(
		llm.Message{Role: "user", Content: message},
		llm.Message{Role: "assistant", Content: reply},
	)

	return reply, nil
}

func (a *Agent) loadHistory() []llm.Message {
	if x, found := a.history.Get(a.conversationID); found {
		return x.([]llm.Message)
	}
	return nil
}

func (a *Agent) appendHistory(turns ...llm.Message) {
	hist := append(a.loadHistory(), turns...)
	a.history.Set(a.conversationID, hist, cache.DefaultExpiration)
}

// buildAnalystPrompt injects the retrieved chunks and the fixed analyst
// persona around the user question.
func buildAnalystPrompt(chunks []memory.Scored, question string) string {
	var b strings.Builder

	b.WriteString("<reference_material>\n")
	for _, s := range chunks {
		b.WriteString(s.Chunk.Text)
		b.WriteString("\n---\n")
	}
	b.WriteString("</reference_material>\n\n")

	b.WriteString("<task>\n")
	b.WriteString("You are an autonomous research agent providing critical financial and market analysis for trading firms.\n")
	b.WriteString("Answer using the reference material above and return information in a consistent format covering:\n")
	b.WriteString("1. Financial Performance: revenue, profit margins, earnings growth.\n")
	b.WriteString("2. Market Position: competitors, market share, industry trends.\n")
	b.WriteString("3. Valuation Metrics: P/E ratio, P/B ratio, EV/EBITDA.\n")
	b.WriteString("4. Recent News: mergers, acquisitions, partnerships, regulatory changes.\n")
	b.WriteString("5. Risks and Opportunities: SWOT analysis, potential risks, growth opportunities.\n")
	b.WriteString("Always include citations from the reference material.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<user_question>\n")
	b.WriteString(question)
	b.WriteString("\n</user_question>\n")

	return b.String()
}
