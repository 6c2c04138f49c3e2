package category

import (
	"context"
	"testing"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/merchant"
)

func testResolver() *Resolver {
	merchants := merchant.NewMemoryDirectory()
	merchants.Put(merchant.Merchant{ID: "m-1", MCC: "9999", Name: "UBER EATS SAO PAULO BR"})
	merchants.Put(merchant.Merchant{ID: "m-2", MCC: "8888", Name: ""})
	return NewResolver(merchants)
}

func TestResolve(t *testing.T) {
	r := testResolver()
	ctx := context.Background()

	cases := []struct {
		name  string
		attrs Attributes
		want  account.Category
	}{
		{"both absent defaults to cash", Attributes{}, account.CategoryCash},
		{"name with EATS", Attributes{MerchantName: "UBER EATS SAO PAULO BR"}, account.CategoryFood},
		{"name with FOOD", Attributes{MerchantName: "WHOLE FOODS MARKET"}, account.CategoryFood},
		{"name with PAG", Attributes{MerchantName: "PAG*JoseDaSilva"}, account.CategoryMeal},
		{"name without keyword", Attributes{MerchantName: "POSTO DE GASOLINA"}, account.CategoryCash},
		{"name wins over mcc", Attributes{MerchantName: "PAG*JoseDaSilva", MCC: "5411"}, account.CategoryMeal},
		{"mcc 5411 via code table", Attributes{MCC: "5411"}, account.CategoryFood},
		{"mcc 5412 via code table", Attributes{MCC: "5412"}, account.CategoryFood},
		{"mcc 5811 via code table", Attributes{MCC: "5811"}, account.CategoryMeal},
		{"mcc 5812 via code table", Attributes{MCC: "5812"}, account.CategoryMeal},
		{"unknown mcc defaults to cash", Attributes{MCC: "0000"}, account.CategoryCash},
		{"mcc resolved through directory name", Attributes{MCC: "9999"}, account.CategoryFood},
		{"directory merchant with empty name uses code table", Attributes{MCC: "8888"}, account.CategoryCash},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Resolve(ctx, tc.attrs); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := testResolver()
	ctx := context.Background()
	attrs := Attributes{MerchantName: "UBER EATS SAO PAULO BR", MCC: "5811"}

	first := r.Resolve(ctx, attrs)
	for i := 0; i < 10; i++ {
		if got := r.Resolve(ctx, attrs); got != first {
			t.Fatalf("resolver not deterministic: %s then %s", first, got)
		}
	}
}

func TestResolveWithoutDirectory(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Resolve(context.Background(), Attributes{MCC: "5811"}); got != account.CategoryMeal {
		t.Fatalf("expected MEAL from code table, got %s", got)
	}
}
