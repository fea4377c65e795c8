package source

// rawRecord is the wire shape of one JSONL log line. Only lines with a
// timestamp and a nested usage object become events; everything else is
// skipped without complaint.
type rawRecord struct {
	Timestamp string      `json:"timestamp"`
	CostUSD   *float64    `json:"costUSD,omitempty"`
	Message   *rawMessage `json:"message,omitempty"`
}

// rawMessage is the assistant message envelope.
type rawMessage struct {
	Model string    `json:"model"`
	Usage *rawUsage `json:"usage,omitempty"`
}

// rawUsage holds token counts from the API response. Absent counts
// unmarshal to zero.
type rawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}
