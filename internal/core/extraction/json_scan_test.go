package extraction

import (
	"testing"

	"bds-price-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func responses(bodies ...string) []domain.CapturedResponse {
	out := make([]domain.CapturedResponse, 0, len(bodies))
	for _, b := range bodies {
		out = append(out, domain.CapturedResponse{URL: "https://www.bdsplanet.com/api/realprice", Body: b})
	}
	return out
}

func TestScanJSON(t *testing.T) {
	profile := DefaultProfile()

	tests := []struct {
		name   string
		bodies []string
		tab    domain.TabKind
		want   int64
		found  bool
	}{
		{
			name:   "numeric field in man units",
			bodies: []string{`{"t_type":"1","trade_price_min":12000}`},
			tab:    domain.TabSale,
			want:   120_000_000,
			found:  true,
		},
		{
			name:   "numeric t_type",
			bodies: []string{`{"t_type":2,"charter_price_min":30000}`},
			tab:    domain.TabLease,
			want:   300_000_000,
			found:  true,
		},
		{
			name:   "mismatched t_type is skipped",
			bodies: []string{`{"t_type":"1","trade_price_min":12000}`},
			tab:    domain.TabLease,
			found:  false,
		},
		{
			name:   "text value goes through currency parser",
			bodies: []string{`{"result":{"sale_price_min":"3억8000만원"}}`},
			tab:    domain.TabSale,
			want:   380_000_000,
			found:  true,
		},
		{
			name:   "field names match by case insensitive substring",
			bodies: []string{`{"Item_JEONSE_PRICE_MIN_VALUE":25000}`},
			tab:    domain.TabLease,
			want:   250_000_000,
			found:  true,
		},
		{
			name:   "candidate order wins over key order",
			bodies: []string{`{"price_min":1000,"sale_price_min":2000}`},
			tab:    domain.TabSale,
			want:   20_000_000,
			found:  true,
		},
		{
			name:   "zero price keeps searching deeper",
			bodies: []string{`{"trade_price_min":0,"nested":[{"trade_price_min":500}]}`},
			tab:    domain.TabSale,
			want:   5_000_000,
			found:  true,
		},
		{
			name:   "typed sibling excludes untyped sibling",
			bodies: []string{`[{"t_type":"1","trade_price_min":9000},{"trade_price_min":7000},{"t_type":"2","trade_price_min":8000}]`},
			tab:    domain.TabLease,
			want:   80_000_000,
			found:  true,
		},
		{
			name:   "untyped array entries still match when nobody is typed",
			bodies: []string{`{"list":[{"name":"a"},{"price_min":4500}]}`},
			tab:    domain.TabLease,
			want:   45_000_000,
			found:  true,
		},
		{
			name:   "invalid bodies are skipped and response order is kept",
			bodies: []string{`{broken`, `[{"t_type":"1","price_min":100}]`, `{"t_type":"1","price_min":200}`},
			tab:    domain.TabSale,
			want:   1_000_000,
			found:  true,
		},
		{
			name:   "null and unparseable values are ignored",
			bodies: []string{`{"trade_price_min":null,"sale_price_min":"문의","price_min":true}`},
			tab:    domain.TabSale,
			found:  false,
		},
		{
			name:  "no responses",
			tab:   domain.TabSale,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ScanJSON(responses(tt.bodies...), tt.tab, profile)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScanJSON_FractionalManIsMultipliedBeforeRounding(t *testing.T) {
	won, ok := ScanJSON(responses(`{"t_type":"1","price_min":12000.5}`), domain.TabSale, DefaultProfile())
	assert.True(t, ok)
	assert.Equal(t, int64(120_005_000), won)
}

func TestScanJSON_OverflowingValueIsSkipped(t *testing.T) {
	body := `{"t_type":"1","trade_price_min":1844674407370956,"detail":{"t_type":"1","sale_price_min":5000}}`
	won, ok := ScanJSON(responses(body), domain.TabSale, DefaultProfile())
	assert.True(t, ok)
	assert.Equal(t, int64(50_000_000), won, "overflowing candidate must not wrap into a small positive price")

	_, ok = ScanJSON(responses(`{"t_type":"1","price_min":1e300}`), domain.TabSale, DefaultProfile())
	assert.False(t, ok)
}
