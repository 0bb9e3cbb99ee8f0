package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name string
		task string
		want string
	}{
		{
			name: "plain domain",
			task: "Purchase compute credits from aws.amazon.com today",
			want: "aws.amazon.com",
		},
		{
			name: "domain inside url",
			task: "Order from https://shop.example.org/cart",
			want: "shop.example.org",
		},
		{
			name: "first of several domains wins",
			task: "Compare aws.amazon.com with cloud.google.com",
			want: "aws.amazon.com",
		},
		{
			name: "hyphenated labels",
			task: "Renew hosting at my-site.co.uk",
			want: "my-site.co.uk",
		},
		{
			name: "two letter tld",
			task: "Buy from shop.io now",
			want: "shop.io",
		},
		{
			name: "no domain falls back to sentinel",
			task: "Buy something somewhere",
			want: FallbackDomain,
		},
		{
			name: "empty task falls back to sentinel",
			task: "",
			want: FallbackDomain,
		},
		{
			name: "trailing dot number is not a domain",
			task: "Spend 12.5 on supplies",
			want: FallbackDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDomain(tt.task))
		})
	}
}

func TestPurchaseNature(t *testing.T) {
	assert.Equal(t, "short task", PurchaseNature("short task"))

	long := "Purchase a twelve month subscription to a premium service"
	assert.Equal(t, "Purchase a twelve month subscr", PurchaseNature(long))
	assert.Len(t, []rune(PurchaseNature(long)), 30)

	// Multi-byte runes are not split.
	unicodeTask := "Compra de créditos de computação em nuvem para o projeto"
	assert.Len(t, []rune(PurchaseNature(unicodeTask)), 30)
}
