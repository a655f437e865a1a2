package domain

import "github.com/shopspring/decimal"

// Prices holds the three derived money figures stored on every product.
type Prices struct {
	TotalCostPrice   decimal.Decimal
	Margin           decimal.Decimal
	MarginPercentage decimal.Decimal
}

// ComputePrices derives total cost, margin and margin percentage from
// the three pricing inputs. The percentage is against total cost and
// rounded half-up to two decimals; a zero total cost yields zero to
// avoid division by zero on free stock.
func ComputePrices(purchasePrice, transportCost, sellingPrice decimal.Decimal) Prices {
	totalCost := purchasePrice.Add(transportCost)
	margin := sellingPrice.Sub(totalCost)

	marginPct := decimal.Zero
	if !totalCost.IsZero() {
		marginPct = margin.Div(totalCost).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return Prices{
		TotalCostPrice:   totalCost,
		Margin:           margin,
		MarginPercentage: marginPct,
	}
}
