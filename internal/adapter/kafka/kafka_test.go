package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() domain.Report {
	return domain.Report{
		RunID:       "run-1",
		Source:      "2015.xlsx",
		Threshold:   15,
		GeneratedAt: time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC),
		Analysis: domain.Analysis{
			Monthly: domain.MonthlyAverageMatrix{
				Cities: []string{"Kraków", "Warszawa"},
				Rows: []domain.MonthlyAverageRow{
					{Year: 2015, Month: 1, Values: []domain.Reading{domain.ValidReading(40), {}}},
				},
			},
			Exceedances: domain.ExceedanceSummary{
				{Year: 2015, City: "Kraków", Station: "MpKrakAlKras", DaysExceeded: 2, ValidDays: 3},
			},
			Stats: domain.Stats{Scheme: domain.SchemeEmbeddedTuple, Stations: 1, Cities: 1},
		},
	}
}

func TestSerializeReport(t *testing.T) {
	msgs, err := serializeReport(testReport())
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	keys := []string{string(msgs[0].Key), string(msgs[1].Key), string(msgs[2].Key)}
	assert.Equal(t, []string{
		"summary|2015.xlsx|run-1",
		"monthly|2015.xlsx|2015-01",
		"exceedance|2015.xlsx|2015|Kraków|MpKrakAlKras",
	}, keys)

	for i, kind := range []string{KindSummary, KindMonthly, KindExceedance} {
		h := msgs[i].Headers
		require.Len(t, h, 4)
		assert.Equal(t, "kind", h[0].Key)
		assert.Equal(t, kind, string(h[0].Value))
		assert.Equal(t, "2015.xlsx", string(h[1].Value))
		assert.Equal(t, "run-1", string(h[2].Value))
		assert.Equal(t, "2025-03-01T06:00:00Z", string(h[3].Value))
	}

	assert.JSONEq(t, `{"run_id":"run-1","source":"2015.xlsx","year":2015,"month":1,"means":{"Kraków":40,"Warszawa":null}}`,
		string(msgs[1].Value))
	assert.JSONEq(t, `{"run_id":"run-1","source":"2015.xlsx","threshold":15,"year":2015,"city":"Kraków","station":"MpKrakAlKras","days_exceeded":2,"valid_days":3}`,
		string(msgs[2].Value))

	var summary SummaryMessage
	require.NoError(t, json.Unmarshal(msgs[0].Value, &summary))
	assert.Equal(t, []string{"Kraków", "Warszawa"}, summary.Cities)
	assert.Equal(t, []int{2015}, summary.Years)
	assert.Equal(t, domain.SchemeEmbeddedTuple, summary.Stats.Scheme)
}

func TestSerializeReport_EmptyReport(t *testing.T) {
	msgs, err := serializeReport(domain.Report{Source: "empty.xlsx"})
	require.NoError(t, err)
	require.Len(t, msgs, 1, "summary is always sent")
	assert.Equal(t, "summary|empty.xlsx|", string(msgs[0].Key))
}
