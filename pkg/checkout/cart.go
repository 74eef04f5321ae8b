package checkout

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

// Line is one product in a cart with its unit count.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// LineViolationDetail exposes the data returned to callers when a line is rejected.
type LineViolationDetail struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// LinesFromMap converts a product id to quantity map into lines ordered by id.
func LinesFromMap(cart map[string]int) []Line {
	lines := make([]Line, 0, len(cart))
	for id, qty := range cart {
		lines = append(lines, Line{ProductID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

// Quantities sums lines per product id.
func Quantities(lines []Line) map[string]int {
	out := make(map[string]int, len(lines))
	for _, line := range lines {
		out[line.ProductID] += line.Quantity
	}
	return out
}

// Expand turns cart lines into one full product snapshot per unit, in line
// order. Unknown products and non-positive quantities are rejected together.
func Expand(lines []Line, catalog []models.Product) ([]models.Product, error) {
	byID := make(map[string]models.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	var violations []LineViolationDetail
	out := []models.Product{}
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		switch {
		case !ok:
			violations = append(violations, LineViolationDetail{ProductID: line.ProductID, Quantity: line.Quantity, Reason: "unknown_product"})
			continue
		case line.Quantity <= 0:
			violations = append(violations, LineViolationDetail{ProductID: line.ProductID, Quantity: line.Quantity, Reason: "invalid_quantity"})
			continue
		}
		for i := 0; i < line.Quantity; i++ {
			out = append(out, product)
		}
	}
	if len(violations) == 0 {
		return out, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid cart for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

// Subtotal is Σ price × quantity over lines whose product is known.
func Subtotal(lines []Line, catalog []models.Product) decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(catalog))
	for _, p := range catalog {
		prices[p.ID] = p.Price
	}
	total := decimal.Zero
	for _, line := range lines {
		if price, ok := prices[line.ProductID]; ok && line.Quantity > 0 {
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	return total
}
