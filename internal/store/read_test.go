package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadReport_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadReport(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListReports_Empty(t *testing.T) {
	s := createTestStore(t)

	records, err := s.ListReports(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListReports_MetadataOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteReport(ctx, Record{ID: "r1", Label: "compare", RecordedAt: testTime, Report: createTestReport()})
	require.NoError(t, err)

	records, err := s.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "compare", records[0].Label)
	assert.NotEmpty(t, records[0].Digest)
	assert.Empty(t, records[0].Report.Results)
}

func TestObservations_RoundTrip(t *testing.T) {
	rep := createTestReport()
	data, err := marshalObservations(rep.Probes[0].Observations)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"reader":0,"spins":10,"stale":false,"timed_out":false,"value":42},{"reader":1,"spins":3,"stale":false,"timed_out":false,"value":42}]`,
		data)

	got, err := unmarshalObservations(data)
	require.NoError(t, err)
	assert.Equal(t, rep.Probes[0].Observations, got)

	empty, err := marshalObservations(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}
