package dto

import "time"

// ResearchRequest is the payload of a websocket "start" command and of the
// non-streaming report endpoint.
type ResearchRequest struct {
	Task         string            `json:"task" validate:"required"`
	ReportType   string            `json:"report_type"`
	ReportSource string            `json:"report_source"`
	SourceURLs   []string          `json:"source_urls"`
	DocumentURLs []string          `json:"document_urls"`
	Tone         string            `json:"tone"`
	Headers      map[string]string `json:"headers,omitempty"`
}

type GenerateReportResponse struct {
	Report string `json:"report"`
}

// ChatEvent is the wire shape of a chat reply pushed to the client.
type ChatEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ResearchEventMessage travels over the in-process bus from the
// orchestrator to the consumer that mirrors it onto NATS.
type ResearchEventMessage struct {
	EventType  string    `json:"event_type"`
	JobID      string    `json:"job_id"`
	Query      string    `json:"query"`
	ReportType string    `json:"report_type"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
