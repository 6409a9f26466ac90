package report

import "sort"

// Tone controls the voice of the generated report.
type Tone string

const (
	ToneObjective   Tone = "Objective"
	ToneFormal      Tone = "Formal"
	ToneAnalytical  Tone = "Analytical"
	TonePersuasive  Tone = "Persuasive"
	ToneInformative Tone = "Informative"
	ToneExplanatory Tone = "Explanatory"
	ToneDescriptive Tone = "Descriptive"
	ToneCritical    Tone = "Critical"
	ToneComparative Tone = "Comparative"
	ToneSpeculative Tone = "Speculative"
	ToneReflective  Tone = "Reflective"
	ToneNarrative   Tone = "Narrative"
)

// Source tells a strategy where its material comes from.
type Source string

const (
	SourceWeb                  Source = "web"
	SourceLocal                Source = "local"
	SourceHybrid               Source = "hybrid"
	SourceLangchainDocuments   Source = "langchain_documents"
	SourceLangchainVectorstore Source = "langchain_vectorstore"
	SourceStatic               Source = "static"
)

// Type selects the generation strategy.
type Type string

const (
	TypeResearch    Type = "research_report"
	TypeDetailed    Type = "detailed_report"
	TypeMultiAgents Type = "multi_agents"
)

var validTones = map[Tone]bool{
	ToneObjective:   true,
	ToneFormal:      true,
	ToneAnalytical:  true,
	TonePersuasive:  true,
	ToneInformative: true,
	ToneExplanatory: true,
	ToneDescriptive: true,
	ToneCritical:    true,
	ToneComparative: true,
	ToneSpeculative: true,
	ToneReflective:  true,
	ToneNarrative:   true,
}

var validSources = map[Source]bool{
	SourceWeb:                  true,
	SourceLocal:                true,
	SourceHybrid:               true,
	SourceLangchainDocuments:   true,
	SourceLangchainVectorstore: true,
	SourceStatic:               true,
}

// ParseTone maps a raw string onto the closed Tone set.
// An empty string defaults to Objective.
func ParseTone(s string) (Tone, error) {
	if s == "" {
		return ToneObjective, nil
	}
	t := Tone(s)
	if !validTones[t] {
		return "", &ValidationError{Field: "tone", Value: s, Allowed: ValidTones()}
	}
	return t, nil
}

// ParseSource maps a raw string onto the closed Source set.
// An empty string defaults to web.
func ParseSource(s string) (Source, error) {
	if s == "" {
		return SourceWeb, nil
	}
	src := Source(s)
	if !validSources[src] {
		return "", &ValidationError{Field: "report_source", Value: s, Allowed: ValidSources()}
	}
	return src, nil
}

// NormalizeType resolves a raw report type string to a strategy type.
// Unknown or empty values fall back to the basic research report,
// mirroring the dispatch rule: multi_agents and detailed_report are
// explicit, everything else is basic.
func NormalizeType(s string) Type {
	switch Type(s) {
	case TypeMultiAgents:
		return TypeMultiAgents
	case TypeDetailed:
		return TypeDetailed
	default:
		return TypeResearch
	}
}

// ValidTones returns the allowed tone names, sorted for stable error messages.
func ValidTones() []string {
	out := make([]string, 0, len(validTones))
	for t := range validTones {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// ValidSources returns the allowed report source values, sorted.
func ValidSources() []string {
	out := make([]string, 0, len(validSources))
	for s := range validSources {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}
