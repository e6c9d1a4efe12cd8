//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/adapter/kafka"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/adapter/xlsx"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/config"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/observability"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/pipeline"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-pm25-summaries"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("pm25-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// writeWorkbook stores a small suffixed-scheme table: two Warszawa stations over
// two days, one reading missing.
func writeWorkbook(t *testing.T, dir string) {
	t.Helper()
	table := domain.RawTable{
		Columns: []domain.StationColumn{{Header: "Rok"}, {Header: "Warszawa"}, {Header: "Warszawa.1"}},
		Rows: []domain.RawRow{
			{Timestamp: "2015-01-01 01:00:00", Values: []string{"2015", "10", "20"}},
			{Timestamp: "2015-01-01 02:00:00", Values: []string{"2015", "", "30"}},
			{Timestamp: "2015-01-02 01:00:00.000005", Values: []string{"2015", "16", "5"}},
		},
	}
	require.NoError(t, xlsx.WriteTable(filepath.Join(dir, "2015_PM25_1g.xlsx"), "", table))
}

func TestPipelineWorkbookToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	dir := t.TempDir()
	writeWorkbook(t, dir)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	memory := store.NewMemoryStore(1)
	source := xlsx.NewReader(xlsx.ReaderOptions{
		Paths:       []string{filepath.Join(dir, "*.xlsx")},
		LabelRow:    -1,
		DropColumns: []string{"Rok"},
	}, discardLogger())
	analyzer := pipeline.NewAnalyzer(domain.DefaultOptions(), nil, discardLogger())
	p := pipeline.New(source, analyzer, []pipeline.ReportSink{writer, memory},
		discardLogger(), observability.NewMetricsForTesting(), pipeline.Options{})

	require.NoError(t, p.RunOnce(ctx))
	require.NoError(t, p.CheckReadiness(ctx))

	report, err := memory.Latest("2015_PM25_1g.xlsx")
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	// summary + one monthly row + two station-years
	byKey := make(map[string]kafkago.Message)
	for range 4 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")
		byKey[string(msg.Key)] = msg
	}

	summary, ok := byKey["summary|2015_PM25_1g.xlsx|"+report.RunID]
	require.True(t, ok, "summary message keyed by run id")
	headers := make(map[string]string)
	for _, h := range summary.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "summary", headers["kind"])
	assert.Equal(t, report.RunID, headers["run_id"])
	_, err = time.Parse(time.RFC3339, headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")

	monthly, ok := byKey["monthly|2015_PM25_1g.xlsx|2015-01"]
	require.True(t, ok)
	var m kafka.MonthlyMessage
	require.NoError(t, json.Unmarshal(monthly.Value, &m))
	// (10 + 20 + 30 + 16 + 5) / 5
	assert.InDelta(t, 16.2, m.Means["Warszawa"].Value, 1e-9)

	exc, ok := byKey["exceedance|2015_PM25_1g.xlsx|2015|Warszawa|Warszawa.1"]
	require.True(t, ok)
	var e kafka.ExceedanceMessage
	require.NoError(t, json.Unmarshal(exc.Value, &e))
	// daily means 25 and 5
	assert.Equal(t, 1, e.DaysExceeded)
	assert.Equal(t, 2, e.ValidDays)

	_, ok = byKey["exceedance|2015_PM25_1g.xlsx|2015|Warszawa|Warszawa"]
	assert.True(t, ok)
}
