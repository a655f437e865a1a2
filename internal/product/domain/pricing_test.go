package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputePrices(t *testing.T) {
	t.Run("refurbished laptop example", func(t *testing.T) {
		p := ComputePrices(dec("950.00"), dec("30.00"), dec("1299.00"))

		assert.True(t, p.TotalCostPrice.Equal(dec("980.00")), "total cost %s", p.TotalCostPrice)
		assert.True(t, p.Margin.Equal(dec("319.00")), "margin %s", p.Margin)
		assert.True(t, p.MarginPercentage.Equal(dec("32.55")), "margin pct %s", p.MarginPercentage)
	})

	t.Run("zero transport cost", func(t *testing.T) {
		p := ComputePrices(dec("100.00"), decimal.Zero, dec("150.00"))

		assert.True(t, p.TotalCostPrice.Equal(dec("100.00")))
		assert.True(t, p.Margin.Equal(dec("50.00")))
		assert.True(t, p.MarginPercentage.Equal(dec("50.00")))
	})

	t.Run("selling below cost yields negative margin", func(t *testing.T) {
		p := ComputePrices(dec("200.00"), dec("10.00"), dec("180.00"))

		assert.True(t, p.Margin.Equal(dec("-30.00")))
		assert.True(t, p.MarginPercentage.Equal(dec("-14.29")), "margin pct %s", p.MarginPercentage)
	})

	t.Run("zero total cost guards the percentage", func(t *testing.T) {
		p := ComputePrices(decimal.Zero, decimal.Zero, dec("99.00"))

		assert.True(t, p.MarginPercentage.IsZero())
		assert.True(t, p.Margin.Equal(dec("99.00")))
	})

	t.Run("rounds half up at two decimals", func(t *testing.T) {
		// 1 / 3 * 100 = 33.333... -> 33.33; 0.005 boundary rounds up.
		p := ComputePrices(dec("3.00"), decimal.Zero, dec("4.00"))
		assert.True(t, p.MarginPercentage.Equal(dec("33.33")), "margin pct %s", p.MarginPercentage)

		p = ComputePrices(dec("400.00"), decimal.Zero, dec("400.02"))
		assert.True(t, p.MarginPercentage.Equal(dec("0.01")), "margin pct %s", p.MarginPercentage)
	})
}
