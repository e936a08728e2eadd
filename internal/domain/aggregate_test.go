package domain

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(city string, hour int) CollisionRecord {
	return CollisionRecord{City: city, Hour: hour, Severity: "Slight", Casualties: 1, Vehicles: 2}
}

func TestAggregate_Scenario(t *testing.T) {
	records := []CollisionRecord{
		rec("Enfield", 8),
		rec("Enfield", 8),
		rec("Lambeth", 20),
	}

	m := Aggregate(records, DefaultFilterSet())

	n, ok := m.At("Enfield", 8)
	require.True(t, ok)
	assert.Equal(t, 2, n)
	for _, h := range []int{7, 8, 9, 17, 18, 19} {
		n, ok := m.At("Lambeth", h)
		require.True(t, ok)
		assert.Zero(t, n, "Lambeth %d:00", h)
	}
	assert.Equal(t, 2, m.MaxCollisions)
	assert.Equal(t, 2, m.Total())
}

func TestAggregate_DenseOrdering(t *testing.T) {
	filter := DefaultFilterSet()
	m := Aggregate(nil, filter)

	require.Len(t, m.Cells, len(filter.Cities)*len(filter.Hours))
	i := 0
	for _, city := range filter.Cities {
		for _, hour := range filter.Hours {
			assert.Equal(t, Cell{City: city, Hour: hour}, m.Cells[i])
			i++
		}
	}
	assert.Equal(t, filter.Cities, m.Cities)
	assert.Equal(t, filter.Hours, m.Hours)
}

func TestAggregate_EmptyInput(t *testing.T) {
	m := Aggregate([]CollisionRecord{}, DefaultFilterSet())

	assert.Len(t, m.Cells, 48)
	assert.Zero(t, m.MaxCollisions)
	for _, c := range m.Cells {
		assert.Zero(t, c.Collisions)
	}
}

func TestAggregate_ExcludesUnknownCityAndOffPeakHours(t *testing.T) {
	records := []CollisionRecord{
		rec("Manchester", 8),
		rec("enfield", 8), // case must match exactly
		rec("Croydon", 10),
		rec("Croydon", 16),
		rec("Croydon", InvalidHour),
	}

	m, stats := AggregateWithStats(records, DefaultFilterSet())

	assert.Zero(t, m.Total())
	assert.Zero(t, m.MaxCollisions)
	assert.Equal(t, AggregateStats{RowsRead: 5, RowsRetained: 0, RowsInvalidHour: 1}, stats)
}

func TestAggregate_NegativeHourIsNotInvalid(t *testing.T) {
	records := []CollisionRecord{
		ParseRecord(map[string]string{ColumnCity: "Croydon", ColumnTime: "-1:00"}),
		ParseRecord(map[string]string{ColumnCity: "Croydon", ColumnTime: "n/a"}),
	}

	_, stats := AggregateWithStats(records, DefaultFilterSet())

	assert.Equal(t, -1, records[0].Hour)
	assert.Equal(t, AggregateStats{RowsRead: 2, RowsRetained: 0, RowsInvalidHour: 1}, stats)
}

func TestAggregate_ParsedSingleDigitHour(t *testing.T) {
	r := ParseRecord(map[string]string{ColumnCity: "Hackney", ColumnTime: "7:05"})

	m := Aggregate([]CollisionRecord{r}, DefaultFilterSet())

	n, _ := m.At("Hackney", 7)
	assert.Equal(t, 1, n)
}

func TestAggregate_CountsMatchRetainedRows(t *testing.T) {
	records := []CollisionRecord{
		rec("Wandsworth", 7), rec("Wandsworth", 7), rec("Wandsworth", 7),
		rec("Newham", 19), rec("Newham", 18),
		rec("Hartlepool", 17),
		rec("Hartlepool", 12),
	}

	m, stats := AggregateWithStats(records, DefaultFilterSet())

	assert.Equal(t, stats.RowsRetained, m.Total())
	assert.Equal(t, 6, stats.RowsRetained)
	assert.Equal(t, 3, m.MaxCollisions)
	for _, c := range m.Cells {
		assert.GreaterOrEqual(t, c.Collisions, 0)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	records := []CollisionRecord{rec("Croydon", 9), rec("Lambeth", 17), rec("Croydon", 9)}

	first := Aggregate(records, DefaultFilterSet())
	second := Aggregate(records, DefaultFilterSet())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("aggregate not idempotent (-first +second):\n%s", diff)
	}
}

func TestAggregate_CustomFilter(t *testing.T) {
	filter := FilterSet{Cities: []string{"York"}, Hours: []int{23, 0}}
	records := []CollisionRecord{rec("York", 0), rec("York", 23), rec("York", 0)}

	m := Aggregate(records, filter)

	assert.Equal(t, []Cell{
		{City: "York", Hour: 23, Collisions: 1},
		{City: "York", Hour: 0, Collisions: 2},
	}, m.Cells)
}

func TestMatrix_AtMissingPair(t *testing.T) {
	m := Aggregate(nil, DefaultFilterSet())
	_, ok := m.At("Leeds", 8)
	assert.False(t, ok)
}

func TestFilterSet_Validate(t *testing.T) {
	require.NoError(t, DefaultFilterSet().Validate())

	assert.ErrorContains(t, FilterSet{Hours: []int{1}}.Validate(), "no target cities")
	assert.ErrorContains(t, FilterSet{Cities: []string{"A"}}.Validate(), "no peak hours")
	assert.ErrorContains(t, FilterSet{Cities: []string{"A", "A"}, Hours: []int{1}}.Validate(), "duplicate city")
	assert.ErrorContains(t, FilterSet{Cities: []string{"A"}, Hours: []int{1, 1}}.Validate(), "duplicate hour")
}

func TestNewSnapshot(t *testing.T) {
	fixed := time.Date(2024, time.June, 3, 8, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	m := Aggregate([]CollisionRecord{rec("Enfield", 8)}, DefaultFilterSet())
	a := NewSnapshot(m, AggregateStats{RowsRead: 1, RowsRetained: 1})
	b := NewSnapshot(m, AggregateStats{RowsRead: 1, RowsRetained: 1})

	assert.Equal(t, fixed, a.GeneratedAt)
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, 1, a.Matrix.MaxCollisions)
}

func TestResourceLoadError(t *testing.T) {
	err := error(&ResourceLoadError{Source: "collisions.csv", Err: io.ErrUnexpectedEOF})

	assert.Equal(t, "load collision data from collisions.csv: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var loadErr *ResourceLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "collisions.csv", loadErr.Source)
}
