package runner

import (
	"testing"

	"callscribe/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_RecordOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Record("first", model.Timeout())
	agg.Record("second", model.Success("text"))
	agg.Record("third", model.Empty("No response"))

	report := agg.Summary()
	require.Len(t, report.Entries, 3)
	assert.Equal(t, "first", report.Entries[0].Label)
	assert.Equal(t, "second", report.Entries[1].Label)
	assert.Equal(t, "third", report.Entries[2].Label)
}

func TestAggregator_FirstSuccess(t *testing.T) {
	agg := NewAggregator()
	agg.Record("a", model.TransportFailure("down"))
	agg.Record("b", model.Success("transcript b"))
	agg.Record("c", model.Success("transcript c"))

	first := agg.FirstSuccess()
	require.NotNil(t, first)
	assert.Equal(t, "b", first.Label)
	assert.Equal(t, "transcript b", first.Outcome.Text)
}

func TestAggregator_FirstSuccessNone(t *testing.T) {
	agg := NewAggregator()
	agg.Record("a", model.RemoteFailure("denied"))
	agg.Record("b", model.Empty("No response"))

	assert.Nil(t, agg.FirstSuccess())
}

func TestAggregator_SummaryIsCopy(t *testing.T) {
	agg := NewAggregator()
	agg.Record("a", model.Success("text"))

	report := agg.Summary()
	report.Entries[0].Label = "mutated"

	assert.Equal(t, "a", agg.Summary().Entries[0].Label)
}
