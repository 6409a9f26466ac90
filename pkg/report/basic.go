package report

import (
	"context"
	"fmt"
	"strings"

	"ai-research-be/pkg/llm"
)

// BasicGenerator produces a single-pass research report. This is the
// default strategy when no explicit report type is requested.
type BasicGenerator struct {
	provider llm.LLMProvider
}

var _ Generator = &BasicGenerator{}

func NewBasicGenerator(provider llm.LLMProvider) *BasicGenerator {
	return &BasicGenerator{provider: provider}
}

func (g *BasicGenerator) Run(ctx context.Context, task Task, sink ProgressSink) (Result, error) {
	sink.Notify(ProgressEvent{
		Type:   "logs",
		Output: fmt.Sprintf("🔍 Starting the research task for '%s'...", task.Query),
	})

	prompt := buildReportPrompt(task, "")

	sink.Notify(ProgressEvent{Type: "logs", Output: "✍️ Writing report..."})

	text, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return Result{}, err
	}

	sink.Notify(ProgressEvent{Type: "report", Output: text})

	return Result{Report: text}, nil
}

// buildReportPrompt assembles the generation prompt shared by the basic and
// detailed strategies. outline is empty for single-pass reports.
func buildReportPrompt(task Task, outline string) string {
	var b strings.Builder

	b.WriteString("<task>\n")
	b.WriteString("You are a research assistant. Write a well-structured report answering the query below.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<constraints>\n")
	fmt.Fprintf(&b, "Tone: %s\n", task.Tone)
	fmt.Fprintf(&b, "Source policy: %s\n", task.Source)
	if len(task.SourceURLs) > 0 {
		fmt.Fprintf(&b, "Prioritize these sources: %s\n", strings.Join(task.SourceURLs, ", "))
	}
	if len(task.DocumentURLs) > 0 {
		fmt.Fprintf(&b, "Reference these documents: %s\n", strings.Join(task.DocumentURLs, ", "))
	}
	b.WriteString("Cite sources inline where claims are made.\n")
	b.WriteString("</constraints>\n\n")

	if outline != "" {
		b.WriteString("<outline>\n")
		b.WriteString(outline)
		b.WriteString("\n</outline>\n\n")
	}

	b.WriteString("<query>\n")
	b.WriteString(task.Query)
	b.WriteString("\n</query>\n")

	return b.String()
}
