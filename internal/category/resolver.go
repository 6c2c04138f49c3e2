// Package category classifies incoming transactions into spending
// categories from merchant data.
package category

import (
	"context"
	"strings"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/merchant"
)

// Attributes are the transaction fields the resolver classifies on. Both
// may be empty.
type Attributes struct {
	MerchantName string
	MCC          string
}

// mccTable maps well-known codes directly to categories when no merchant
// record supplies a better name.
var mccTable = map[string]account.Category{
	"5411": account.CategoryFood,
	"5412": account.CategoryFood,
	"5811": account.CategoryMeal,
	"5812": account.CategoryMeal,
}

// Resolver assigns a spending category to transaction attributes. It is
// total: every input resolves to some category, CASH being the safe
// default.
type Resolver struct {
	merchants merchant.Directory
}

// NewResolver builds a resolver that consults the given merchant directory
// for MCC-only transactions.
func NewResolver(merchants merchant.Directory) *Resolver {
	return &Resolver{merchants: merchants}
}

// Resolve classifies the attributes. A merchant name takes precedence over
// the MCC; a bare MCC is resolved through the directory first and falls
// back to the fixed code table. Directory failures are treated as
// not-found, never surfaced.
func (r *Resolver) Resolve(ctx context.Context, attrs Attributes) account.Category {
	if attrs.MerchantName == "" && attrs.MCC == "" {
		return account.CategoryCash
	}
	if attrs.MerchantName != "" {
		return byName(attrs.MerchantName)
	}
	return r.byMCC(ctx, attrs.MCC)
}

// byName applies the ordered substring rules; first match wins.
func byName(name string) account.Category {
	switch {
	case strings.Contains(name, "EATS") || strings.Contains(name, "FOOD"):
		return account.CategoryFood
	case strings.Contains(name, "PAG"):
		return account.CategoryMeal
	default:
		return account.CategoryCash
	}
}

func (r *Resolver) byMCC(ctx context.Context, mcc string) account.Category {
	if r.merchants != nil {
		if m, err := r.merchants.ByMCC(ctx, mcc); err == nil && m.Name != "" {
			return byName(m.Name)
		}
	}
	if cat, ok := mccTable[mcc]; ok {
		return cat
	}
	return account.CategoryCash
}
