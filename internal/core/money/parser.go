package money

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bds-price-service/internal/core/domain"
)

const (
	EokUnit = 100_000_000 // 억
	ManUnit = 10_000      // 만
)

const (
	eokMarker = "억"
	manMarker = "만"
	wonSuffix = "원"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

var cleaner = strings.NewReplacer(",", "", " ", "", wonSuffix, "")

// ParseAmount переводит корейскую запись цены ("3억8000", "8000만원", "120000000")
// в сумму в вонах. Пустая строка дает 0. Ошибка оборачивает domain.ErrParse.
func ParseAmount(raw string) (int64, error) {
	s := strings.TrimSpace(cleaner.Replace(raw))
	if s == "" {
		return 0, nil
	}

	if idx := strings.Index(s, eokMarker); idx >= 0 {
		var won int64

		left := s[:idx]
		if strings.TrimSpace(left) != "" {
			eok, err := strconv.ParseFloat(left, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: eok part %q: %v", domain.ErrParse, left, err)
			}
			won += int64(math.Round(eok * EokUnit))
		}

		right := s[idx+len(eokMarker):]
		if strings.TrimSpace(right) != "" {
			if manIdx := strings.Index(right, manMarker); manIdx >= 0 {
				man, err := strconv.ParseInt(right[:manIdx], 10, 64)
				if err != nil {
					return 0, fmt.Errorf("%w: man part %q: %v", domain.ErrParse, right[:manIdx], err)
				}
				won += man * ManUnit
			} else if digitsOnly.MatchString(right) {
				// "3억8000" - хвост без 만 тоже в единицах 만
				man, err := strconv.ParseInt(right, 10, 64)
				if err != nil {
					return 0, fmt.Errorf("%w: man part %q: %v", domain.ErrParse, right, err)
				}
				won += man * ManUnit
			}
		}
		return won, nil
	}

	if idx := strings.Index(s, manMarker); idx >= 0 {
		man, err := strconv.ParseInt(s[:idx], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: man part %q: %v", domain.ErrParse, s[:idx], err)
		}
		return man * ManUnit, nil
	}

	won, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", domain.ErrParse, s, err)
	}
	return won, nil
}

// ParseAmountPtr - то же, что ParseAmount, но nil трактуется как 0
func ParseAmountPtr(raw *string) (int64, error) {
	if raw == nil {
		return 0, nil
	}
	return ParseAmount(*raw)
}

// HasUnitMarker сообщает, есть ли в тексте 억 или 만
func HasUnitMarker(text string) bool {
	return strings.Contains(text, eokMarker) || strings.Contains(text, manMarker)
}
