package configs

import (
	"fmt"
	"os"

	"bds-price-service/internal/core/capture"
	"bds-price-service/internal/core/extraction"
	"bds-price-service/internal/core/urlpattern"

	"gopkg.in/yaml.v2"
)

// Кандидаты для поля поиска в порядке приоритета
var defaultSearchSelectors = []string{
	`input[placeholder*="주소"]`,
	`input[placeholder*="검색"]`,
	`input[placeholder*="지하철"]`,
	`input[placeholder*="단지"]`,
	`input[type="search"]`,
	`input[type="text"]`,
	"#searchInput",
	".search-input",
	`[data-testid="search-input"]`,
}

// SiteConfig - все, что зависит от верстки и API сайта
type SiteConfig struct {
	BaseURL           string
	SearchSelectors   []string
	SearchHintPattern string // для поиска поля по placeholder и по роли
	ResponseMarkers   []string
	Profile           extraction.Profile
}

// siteProfileFile - формат YAML-файла BDS_SITE_PROFILE
type siteProfileFile struct {
	SearchSelectors   []string           `yaml:"search_selectors"`
	SearchHintPattern string             `yaml:"search_hint_pattern"`
	ResponseMarkers   []string           `yaml:"response_markers"`
	Extraction        extraction.Profile `yaml:"extraction"`
}

func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		BaseURL:           urlpattern.DefaultBaseURL,
		SearchSelectors:   append([]string(nil), defaultSearchSelectors...),
		SearchHintPattern: "주소|검색|지하철|단지",
		ResponseMarkers:   append([]string(nil), capture.DefaultURLMarkers...),
		Profile:           extraction.DefaultProfile(),
	}
}

func loadSiteConfig() (SiteConfig, error) {
	cfg := DefaultSiteConfig()
	cfg.BaseURL = getEnvAsString("BDS_BASE_URL", cfg.BaseURL)

	if path := os.Getenv("BDS_SITE_PROFILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("could not read site profile %s: %w", path, err)
		}
		if err := cfg.ApplyProfileYAML(raw); err != nil {
			return cfg, fmt.Errorf("site profile %s: %w", path, err)
		}
	}

	// селекторы из окружения добавляются в конец, после встроенных и файловых
	cfg.SearchSelectors = appendUnique(cfg.SearchSelectors, getEnvAsList("BDS_SEARCH_SELECTORS", nil)...)
	cfg.ResponseMarkers = getEnvAsList("BDS_RESPONSE_MARKERS", cfg.ResponseMarkers)

	return cfg, nil
}

// ApplyProfileYAML накладывает YAML-профиль поверх текущих значений
func (c *SiteConfig) ApplyProfileYAML(raw []byte) error {
	var file siteProfileFile
	if err := yaml.UnmarshalStrict(raw, &file); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}

	if len(file.SearchSelectors) > 0 {
		c.SearchSelectors = file.SearchSelectors
	}
	if file.SearchHintPattern != "" {
		c.SearchHintPattern = file.SearchHintPattern
	}
	if len(file.ResponseMarkers) > 0 {
		c.ResponseMarkers = file.ResponseMarkers
	}
	c.Profile = c.Profile.Merge(file.Extraction)
	return nil
}

// appendUnique пропускает значения, которые уже есть в списке
func appendUnique(list []string, values ...string) []string {
	seen := make(map[string]bool, len(list)+len(values))
	for _, v := range list {
		seen[v] = true
	}
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		list = append(list, v)
	}
	return list
}
