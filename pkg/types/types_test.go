package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

func TestAvailability_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a     domain.Availability
		want  string
		known bool
	}{
		{a: domain.InStock, want: "in_stock", known: true},
		{a: domain.OutOfStock, want: "out_of_stock", known: true},
		{a: domain.Unknown, want: "unknown", known: false},
		{a: domain.Availability(42), want: "unknown", known: false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.String())
			assert.Equal(t, tt.known, tt.a.Known())
		})
	}
}

func TestAvailability_ZeroValueIsUnknown(t *testing.T) {
	t.Parallel()

	var a domain.Availability
	assert.Equal(t, domain.Unknown, a)
}

func TestAvailability_JSON(t *testing.T) {
	t.Parallel()

	c := domain.Classification{
		Item:         domain.TrackedItem{Code: "FYWH3J"},
		Availability: domain.OutOfStock,
	}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"availability":"out_of_stock"`)

	var got domain.Classification
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, domain.OutOfStock, got.Availability)
}

func TestAvailability_UnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    domain.Availability
		wantErr bool
	}{
		{in: "in_stock", want: domain.InStock},
		{in: "OUT_OF_STOCK", want: domain.OutOfStock},
		{in: "unknown", want: domain.Unknown},
		{in: "", want: domain.Unknown},
		{in: "sold_out", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			var a domain.Availability
			err := a.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid availability")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestFromBool(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.InStock, domain.FromBool(true))
	assert.Equal(t, domain.OutOfStock, domain.FromBool(false))
}

func TestEntries(t *testing.T) {
	t.Parallel()

	got := domain.Entries(map[string]bool{"FYWJ3J": false, "FYWH3J": true, "A1": false})
	assert.Equal(t, []domain.SnapshotEntry{
		{Code: "A1", InStock: false},
		{Code: "FYWH3J", InStock: true},
		{Code: "FYWJ3J", InStock: false},
	}, got)

	assert.Empty(t, domain.Entries(nil))
}
