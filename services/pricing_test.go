package services

import (
	"testing"

	"craftmarket/models"

	"github.com/stretchr/testify/assert"
)

func TestGrossTotal(t *testing.T) {
	tests := []struct {
		name          string
		netTotal      float64
		taxRate       float64
		discountType  string
		discountValue float64
		want          float64
	}{
		{
			name:     "percent discount then tax",
			netTotal: 100, taxRate: 19,
			discountType: models.DiscountPercent, discountValue: 10,
			want: 107.10,
		},
		{
			name:     "fixed discount then tax",
			netTotal: 250, taxRate: 7,
			discountType: models.DiscountFixed, discountValue: 20,
			want: 246.10,
		},
		{
			name:     "no discount",
			netTotal: 100, taxRate: 19,
			want: 119.00,
		},
		{
			name:     "fixed discount larger than net floors at zero",
			netTotal: 50, taxRate: 19,
			discountType: models.DiscountFixed, discountValue: 80,
			want: 0,
		},
		{
			name:     "percent discount over hundred floors at zero",
			netTotal: 100, taxRate: 19,
			discountType: models.DiscountPercent, discountValue: 150,
			want: 0,
		},
		{
			name:     "result rounded to cents",
			netTotal: 99.99, taxRate: 19,
			want: 118.99,
		},
		{
			name:     "unknown discount type ignored",
			netTotal: 100, taxRate: 19,
			discountType: "coupon", discountValue: 10,
			want: 119.00,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrossTotal(tt.netTotal, tt.taxRate, tt.discountType, tt.discountValue)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}
