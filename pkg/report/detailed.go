package report

import (
	"context"
	"fmt"
	"strings"

	"ai-research-be/pkg/llm"
)

// DetailedGenerator produces a multi-section report: it first plans an
// outline, then researches and writes each section, streaming progress
// per section.
type DetailedGenerator struct {
	provider llm.LLMProvider
}

var _ Generator = &DetailedGenerator{}

func NewDetailedGenerator(provider llm.LLMProvider) *DetailedGenerator {
	return &DetailedGenerator{provider: provider}
}

func (g *DetailedGenerator) Run(ctx context.Context, task Task, sink ProgressSink) (Result, error) {
	sink.Notify(ProgressEvent{
		Type:   "logs",
		Output: fmt.Sprintf("🗂️ Planning a detailed report for '%s'...", task.Query),
	})

	outline, err := g.planOutline(ctx, task)
	if err != nil {
		return Result{}, fmt.Errorf("plan outline: %w", err)
	}

	sections := splitOutline(outline)
	sink.Notify(ProgressEvent{
		Type:   "logs",
		Output: fmt.Sprintf("📋 Outline ready: %d sections", len(sections)),
	})

	var body strings.Builder
	for i, section := range sections {
		sink.Notify(ProgressEvent{
			Type:   "logs",
			Output: fmt.Sprintf("✍️ Writing section %d/%d: %s", i+1, len(sections), section),
		})

		text, err := g.writeSection(ctx, task, section)
		if err != nil {
			return Result{}, fmt.Errorf("write section %q: %w", section, err)
		}
		body.WriteString(text)
		body.WriteString("\n\n")
	}

	full := strings.TrimSpace(body.String())
	sink.Notify(ProgressEvent{Type: "report", Output: full})

	return Result{Report: full}, nil
}

func (g *DetailedGenerator) planOutline(ctx context.Context, task Task) (string, error) {
	var b strings.Builder
	b.WriteString("Produce a section outline for a detailed research report.\n")
	b.WriteString("Return one section title per line, no numbering, 4 to 6 sections.\n\n")
	fmt.Fprintf(&b, "Query: %s\n", task.Query)
	fmt.Fprintf(&b, "Tone: %s\n", task.Tone)

	return g.provider.Generate(ctx, b.String(), llm.WithTemperature(0.2))
}

func (g *DetailedGenerator) writeSection(ctx context.Context, task Task, section string) (string, error) {
	prompt := buildReportPrompt(task, section)
	return g.provider.Generate(ctx, prompt, llm.WithTemperature(0.4))
}

// splitOutline turns the planner output into section titles. Blank lines and
// leading list markers are stripped.
func splitOutline(outline string) []string {
	var sections []string
	for _, line := range strings.Split(outline, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		sections = append(sections, line)
	}
	if len(sections) == 0 {
		sections = []string{"Report"}
	}
	return sections
}
