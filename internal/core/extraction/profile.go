package extraction

import "bds-price-service/internal/core/domain"

// Probe - один запасной селектор. Contains, если задан, требует
// наличия подстроки в тексте элемента.
type Probe struct {
	Selector string `yaml:"selector"`
	Contains string `yaml:"contains"`
}

// Profile - эвристики под верстку и API сайта.
// Вынесены отдельно, чтобы их можно было переопределить файлом профиля.
type Profile struct {
	TypeField          string   `yaml:"type_field"`
	SaleFields         []string `yaml:"sale_fields"`
	LeaseFields        []string `yaml:"lease_fields"`
	LowestPriceLabel   string   `yaml:"lowest_price_label"`
	PriceAreaSelector  string   `yaml:"price_area_selector"`
	LabelAncestorDepth int      `yaml:"label_ancestor_depth"`
	GenericProbes      []Probe  `yaml:"generic_probes"`
	GenericLimit       int      `yaml:"generic_limit"`
	ExcludeMarker      string   `yaml:"exclude_marker"`
}

func DefaultProfile() Profile {
	return Profile{
		TypeField:          "t_type",
		SaleFields:         []string{"trade_price_min", "sale_price_min", "price_min"},
		LeaseFields:        []string{"trade_price_min", "charter_price_min", "jeonse_price_min", "rent_deposit_min", "price_min"},
		LowestPriceLabel:   "매물 최저가",
		PriceAreaSelector:  ".price-info-area .price-area .txt",
		LabelAncestorDepth: 2,
		GenericProbes: []Probe{
			{Selector: ".price-area .txt"},
			{Selector: ".price .txt"},
			{Selector: "*", Contains: "억"},
			{Selector: "span", Contains: "억"},
			{Selector: "div", Contains: "억"},
		},
		GenericLimit:  5,
		ExcludeMarker: "조",
	}
}

// FieldsFor возвращает упорядоченный список полей-кандидатов для вкладки
func (p Profile) FieldsFor(tab domain.TabKind) []string {
	if tab == domain.TabLease {
		return p.LeaseFields
	}
	return p.SaleFields
}

// Merge накладывает непустые значения override поверх профиля
func (p Profile) Merge(override Profile) Profile {
	if override.TypeField != "" {
		p.TypeField = override.TypeField
	}
	if len(override.SaleFields) > 0 {
		p.SaleFields = override.SaleFields
	}
	if len(override.LeaseFields) > 0 {
		p.LeaseFields = override.LeaseFields
	}
	if override.LowestPriceLabel != "" {
		p.LowestPriceLabel = override.LowestPriceLabel
	}
	if override.PriceAreaSelector != "" {
		p.PriceAreaSelector = override.PriceAreaSelector
	}
	if override.LabelAncestorDepth > 0 {
		p.LabelAncestorDepth = override.LabelAncestorDepth
	}
	if len(override.GenericProbes) > 0 {
		p.GenericProbes = override.GenericProbes
	}
	if override.GenericLimit > 0 {
		p.GenericLimit = override.GenericLimit
	}
	if override.ExcludeMarker != "" {
		p.ExcludeMarker = override.ExcludeMarker
	}
	return p
}
