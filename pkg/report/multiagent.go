package report

import (
	"context"
	"fmt"

	"ai-research-be/pkg/llm"
)

// MultiAgentGenerator delegates to a multi-step agent pipeline in which
// specialized roles hand off to each other. Each phase streams its own
// progress. The pipeline returns a structured result; the report artifact
// is extracted from its "report" field and defaults to empty when absent.
type MultiAgentGenerator struct {
	provider llm.LLMProvider
}

var _ Generator = &MultiAgentGenerator{}

func NewMultiAgentGenerator(provider llm.LLMProvider) *MultiAgentGenerator {
	return &MultiAgentGenerator{provider: provider}
}

type agentPhase struct {
	name        string
	instruction string
}

var multiAgentPhases = []agentPhase{
	{"browser", "Collect the key facts, figures and recent developments relevant to the query. Output raw findings as bullet points."},
	{"researcher", "Verify and expand the findings below. Resolve contradictions and note the strength of each source."},
	{"editor", "Organize the verified findings below into a coherent report structure with section headings."},
	{"writer", "Write the final report from the structured draft below. Keep all citations."},
}

func (g *MultiAgentGenerator) Run(ctx context.Context, task Task, sink ProgressSink) (Result, error) {
	sink.Notify(ProgressEvent{
		Type:   "logs",
		Output: fmt.Sprintf("🤖 Starting multi-agent research for '%s'...", task.Query),
	})

	carry := task.Query
	for _, phase := range multiAgentPhases {
		sink.Notify(ProgressEvent{
			Type:   "logs",
			Output: fmt.Sprintf("🤖 %s agent working...", phase.name),
		})

		prompt := fmt.Sprintf("Role: %s\nTone: %s\n\n%s\n\nQuery: %s\n\nInput:\n%s",
			phase.name, task.Tone, phase.instruction, task.Query, carry)

		out, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
		if err != nil {
			return Result{}, fmt.Errorf("%s agent: %w", phase.name, err)
		}
		carry = out
	}

	// The pipeline result is structured; only the report field survives.
	structured := map[string]interface{}{
		"report": carry,
	}

	text, _ := structured["report"].(string)
	sink.Notify(ProgressEvent{Type: "report", Output: text})

	return Result{Report: text}, nil
}
