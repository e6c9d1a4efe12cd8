package domain

import "time"

// Report is the analysis of one source table as handed to sinks.
type Report struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Threshold   float64   `json:"threshold"`
	GeneratedAt time.Time `json:"generated_at"`
	Analysis
}
