package report

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Tone
		wantErr bool
	}{
		{name: "empty defaults to objective", input: "", want: ToneObjective},
		{name: "known tone", input: "Analytical", want: ToneAnalytical},
		{name: "case sensitive", input: "analytical", wantErr: true},
		{name: "unknown tone", input: "Sarcastic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTone(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTone(%q) = %q, want error", tt.input, got)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("error type = %T, want *ValidationError", err)
				}
				if verr.Field != "tone" {
					t.Errorf("Field = %q, want %q", verr.Field, "tone")
				}
				if len(verr.Allowed) != len(validTones) {
					t.Errorf("Allowed lists %d values, want %d", len(verr.Allowed), len(validTones))
				}
				if !strings.Contains(err.Error(), tt.input) {
					t.Errorf("message %q does not name the bad value %q", err.Error(), tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTone(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Source
		wantErr bool
	}{
		{name: "empty defaults to web", input: "", want: SourceWeb},
		{name: "local", input: "local", want: SourceLocal},
		{name: "langchain vectorstore", input: "langchain_vectorstore", want: SourceLangchainVectorstore},
		{name: "unknown source", input: "darkweb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSource(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSource(%q) = %q, want error", tt.input, got)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("error type = %T, want *ValidationError", err)
				}
				for _, allowed := range verr.Allowed {
					if allowed == tt.input {
						t.Errorf("Allowed contains the rejected value %q", tt.input)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSource(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSource(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		input string
		want  Type
	}{
		{input: "multi_agents", want: TypeMultiAgents},
		{input: "detailed_report", want: TypeDetailed},
		{input: "research_report", want: TypeResearch},
		{input: "outline_report", want: TypeResearch},
		{input: "", want: TypeResearch},
	}

	for _, tt := range tests {
		if got := NormalizeType(tt.input); got != tt.want {
			t.Errorf("NormalizeType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidationErrorMessageListsAllowedSet(t *testing.T) {
	_, err := ParseTone("Bogus")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for tone := range validTones {
		if !strings.Contains(msg, string(tone)) {
			t.Errorf("message missing allowed tone %q: %s", tone, msg)
		}
	}
}
