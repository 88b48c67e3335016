package domain

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lvl(source, price string, qty int64) PriceLevel {
	return PriceLevel{Source: source, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestCalculateVWAP(t *testing.T) {
	s := NewDefaultAggregationStrategy()
	offers := []PriceLevel{
		lvl("LP3", "82.1800", 1_000_000),
		lvl("LP3", "82.1900", 2_000_000),
		lvl("LP3", "82.2000", 3_000_000),
	}

	t.Run("walks levels in order", func(t *testing.T) {
		vwap, err := s.CalculateVWAP(slices.Values(offers), 3_000_000)
		require.NoError(t, err)
		assert.Equal(t, "82.1867", vwap.StringFixed(VWAPPrecision))
	})

	t.Run("single level", func(t *testing.T) {
		vwap, err := s.CalculateVWAP(slices.Values(offers), 500_000)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("82.18").Equal(vwap))
	})

	t.Run("whole side", func(t *testing.T) {
		vwap, err := s.CalculateVWAP(slices.Values(offers), 6_000_000)
		require.NoError(t, err)
		// (82.18*1 + 82.19*2 + 82.20*3) / 6 = 82.19333...
		assert.Equal(t, "82.1933", vwap.StringFixed(VWAPPrecision))
	})

	t.Run("insufficient liquidity", func(t *testing.T) {
		_, err := s.CalculateVWAP(slices.Values(offers), 6_000_001)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})

	t.Run("empty side", func(t *testing.T) {
		_, err := s.CalculateVWAP(slices.Values([]PriceLevel(nil)), 1)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})

	t.Run("non-positive target", func(t *testing.T) {
		for _, target := range []int64{0, -1, -1_000_000} {
			_, err := s.CalculateVWAP(slices.Values(offers), target)
			assert.ErrorIs(t, err, ErrInvalidTargetQuantity, "target %d", target)
		}
	})

	t.Run("zero quantity level ends the walk", func(t *testing.T) {
		levels := []PriceLevel{lvl("LP1", "10", 0), lvl("LP2", "11", 100)}
		_, err := s.CalculateVWAP(slices.Values(levels), 50)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})
}

func TestCalculateVWAPRoundsHalfUp(t *testing.T) {
	s := NewDefaultAggregationStrategy()
	tests := []struct {
		price string
		want  string
	}{
		{"1.00005", "1.0001"},
		{"1.00004", "1.0000"},
		{"1.00015", "1.0002"},
		{"2.99995", "3.0000"},
	}
	for _, tt := range tests {
		vwap, err := s.CalculateVWAP(slices.Values([]PriceLevel{lvl("LP1", tt.price, 10)}), 10)
		require.NoError(t, err)
		assert.Equal(t, tt.want, vwap.StringFixed(VWAPPrecision), "price %s", tt.price)
	}
}

func TestCalculateTotalQuantity(t *testing.T) {
	s := NewDefaultAggregationStrategy()
	bids := []PriceLevel{
		lvl("LP1", "82.1600", 3_000_000),
		lvl("LP2", "82.15", 2_000_000),
		lvl("LP1", "82.1500", 1_000_000),
		lvl("LP3", "82.1499", 7_000_000),
	}

	assert.Equal(t, int64(3_000_000), s.CalculateTotalQuantity(slices.Values(bids), decimal.RequireFromString("82.1500")))
	assert.Equal(t, int64(3_000_000), s.CalculateTotalQuantity(slices.Values(bids), decimal.RequireFromString("82.16")))
	assert.Zero(t, s.CalculateTotalQuantity(slices.Values(bids), decimal.RequireFromString("82.17")))
	assert.Zero(t, s.CalculateTotalQuantity(slices.Values([]PriceLevel(nil)), decimal.RequireFromString("82.15")))
}
