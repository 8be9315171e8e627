package changes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

func record(rows ...[]string) domain.ResponseRecord {
	return domain.NewResponseRecord([]string{"A", "B"}, rows)
}

func hashOf(t *testing.T, r domain.ResponseRecord) domain.ContentHash {
	h, err := ComputeHash(r)
	require.NoError(t, err)
	return h
}

func TestComputeHash_Deterministic(t *testing.T) {
	r := record([]string{"a", "b"}, []string{"c", "d"})
	assert.Equal(t, hashOf(t, r), hashOf(t, r))
	assert.Len(t, string(hashOf(t, r)), 64)
}

func TestComputeHash_Distinguishes(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.ResponseRecord
	}{
		{
			name: "cell boundaries",
			a:    record([]string{"a", "bc"}),
			b:    record([]string{"ab", "c"}),
		},
		{
			name: "row boundaries",
			a:    record([]string{"a"}, []string{"b"}),
			b:    record([]string{"a", "b"}),
		},
		{
			name: "row order",
			a:    record([]string{"1", "2"}, []string{"3", "4"}),
			b:    record([]string{"3", "4"}, []string{"1", "2"}),
		},
		{
			name: "one empty cell vs zero-width row",
			a:    domain.NewResponseRecord(nil, [][]string{{""}}),
			b:    domain.NewResponseRecord(nil, [][]string{{}}),
		},
		{
			name: "trailing empty cell",
			a:    record([]string{"a", ""}),
			b:    record([]string{"a"}),
		},
		{
			name: "empty vs one empty row",
			a:    record(),
			b:    record([]string{""}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, hashOf(t, tc.a), hashOf(t, tc.b))
		})
	}
}

func TestComputeHash_IgnoresColumns(t *testing.T) {
	a := domain.NewResponseRecord([]string{"Name"}, [][]string{{"x"}})
	b := domain.NewResponseRecord([]string{"Renamed"}, [][]string{{"x"}})
	assert.Equal(t, hashOf(t, a), hashOf(t, b))
}

func TestDecide(t *testing.T) {
	hashA := domain.ContentHash("aaaa")
	hashB := domain.ContentHash("bbbb")

	assert.Equal(t, Changed, Decide(hashA, nil))
	assert.Equal(t, Unchanged, Decide(hashA, &hashA))
	assert.Equal(t, Changed, Decide(hashA, &hashB))
}

func TestEvaluate(t *testing.T) {
	r := record([]string{"a", "b"})
	hash, decision, err := Evaluate(r, nil)
	require.NoError(t, err)
	assert.Equal(t, Changed, decision)

	_, decision, err = Evaluate(r, &hash)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, decision)
}
