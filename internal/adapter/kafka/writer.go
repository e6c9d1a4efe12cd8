package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/config"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Message kinds, sent in the "kind" header and as the key prefix.
const (
	KindSummary    = "summary"
	KindMonthly    = "monthly"
	KindExceedance = "exceedance"
)

// Writer produces report rows to a Kafka topic.
// It implements pipeline.ReportSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// LoadReport publishes one summary message, one message per monthly matrix row,
// and one per exceedance row, in a single WriteMessages call. Rows of one city
// or station hash to the same partition.
func (w *Writer) LoadReport(ctx context.Context, report domain.Report) error {
	msgs, err := serializeReport(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %s: %w", report.Source, err)
	}
	w.logger.Debug("report published", "source", report.Source, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// SummaryMessage is the value of a "summary" message.
type SummaryMessage struct {
	RunID       string       `json:"run_id"`
	Source      string       `json:"source"`
	Threshold   float64      `json:"threshold"`
	GeneratedAt time.Time    `json:"generated_at"`
	Cities      []string     `json:"cities"`
	Years       []int        `json:"years"`
	Stats       domain.Stats `json:"stats"`
}

// MonthlyMessage is the value of a "monthly" message: one matrix row.
type MonthlyMessage struct {
	RunID  string                    `json:"run_id"`
	Source string                    `json:"source"`
	Year   int                       `json:"year"`
	Month  int                       `json:"month"`
	Means  map[string]domain.Reading `json:"means"`
}

// ExceedanceMessage is the value of an "exceedance" message.
type ExceedanceMessage struct {
	RunID     string  `json:"run_id"`
	Source    string  `json:"source"`
	Threshold float64 `json:"threshold"`
	domain.Exceedance
}

func serializeReport(r domain.Report) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, 1+len(r.Monthly.Rows)+len(r.Exceedances))

	msg, err := newMessage(KindSummary, r, r.RunID, SummaryMessage{
		RunID:       r.RunID,
		Source:      r.Source,
		Threshold:   r.Threshold,
		GeneratedAt: r.GeneratedAt,
		Cities:      r.Monthly.Cities,
		Years:       r.Exceedances.Years(),
		Stats:       r.Stats,
	})
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, msg)

	for _, row := range r.Monthly.Rows {
		means := make(map[string]domain.Reading, len(r.Monthly.Cities))
		for i, city := range r.Monthly.Cities {
			means[city] = row.Values[i]
		}
		msg, err := newMessage(KindMonthly, r, fmt.Sprintf("%04d-%02d", row.Year, row.Month), MonthlyMessage{
			RunID:  r.RunID,
			Source: r.Source,
			Year:   row.Year,
			Month:  row.Month,
			Means:  means,
		})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	for _, e := range r.Exceedances {
		msg, err := newMessage(KindExceedance, r, fmt.Sprintf("%d|%s|%s", e.Year, e.City, e.Station), ExceedanceMessage{
			RunID:      r.RunID,
			Source:     r.Source,
			Threshold:  r.Threshold,
			Exceedance: e,
		})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// newMessage marshals v into a message keyed "<kind>|<source>|<rowKey>".
func newMessage(kind string, r domain.Report, rowKey string, v any) (kafkago.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s row %s: %w", kind, rowKey, err)
	}
	return kafkago.Message{
		Key:   []byte(kind + "|" + r.Source + "|" + rowKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(kind)},
			{Key: "source", Value: []byte(r.Source)},
			{Key: "run_id", Value: []byte(r.RunID)},
			{Key: "generated_at", Value: []byte(r.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
