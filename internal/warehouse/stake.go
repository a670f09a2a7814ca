package warehouse

import "github.com/consignd/commerce-backend/internal/commerce"

// AdjustForStake scales every gross quantity down to the seller's
// contractual share: floor(gross * pct / 100). Flooring always rounds
// fractional stakes down, so the adjusted catalog under-reports rather
// than oversells.
func AdjustForStake(items []commerce.Product, stakePercentage int) []commerce.Product {
	adjusted := make([]commerce.Product, len(items))
	for i, item := range items {
		item.Quantity = adjustQuantity(item.Quantity, stakePercentage)
		adjusted[i] = item
	}
	return adjusted
}

func adjustQuantity(gross, stakePercentage int) int {
	if gross <= 0 || stakePercentage <= 0 {
		return 0
	}
	return gross * stakePercentage / 100
}
