package money

import (
	"strconv"
	"strings"
)

// FormatKorean - обратное преобразование: 250000000 -> "2억 5000만원"
func FormatKorean(won int64) string {
	if won <= 0 {
		return "0원"
	}

	eok := won / EokUnit
	man := (won % EokUnit) / ManUnit
	rest := won % ManUnit

	var b strings.Builder
	switch {
	case eok > 0:
		b.WriteString(strconv.FormatInt(eok, 10) + "억")
		if man > 0 {
			b.WriteString(" " + strconv.FormatInt(man, 10) + "만")
		}
	case man > 0:
		b.WriteString(strconv.FormatInt(man, 10) + "만")
	default:
		b.WriteString(strconv.FormatInt(rest, 10))
	}
	b.WriteString("원")
	return b.String()
}

// FormatKoreanPtr возвращает пустую строку для отсутствующей цены
func FormatKoreanPtr(won *int64) string {
	if won == nil {
		return ""
	}
	return FormatKorean(*won)
}
