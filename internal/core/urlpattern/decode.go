package urlpattern

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

var (
	hangulSyllable = regexp.MustCompile(`[\x{AC00}-\x{D7A3}]`)
	addressChars   = regexp.MustCompile(`^[\x{AC00}-\x{D7A3}\x{1100}-\x{11FF}\x{3130}-\x{318F}\s\d\-.]+$`)
)

// DecodeAddressSegment пытается раскодировать сегмент адреса из URL объекта.
// Порядок: base64, url-safe base64, percent-encoding (UTF-8), percent-encoding (EUC-KR).
func DecodeAddressSegment(encoded string) (string, bool) {
	if encoded == "" {
		return "", false
	}

	if s, ok := decodeBase64(encoded, base64.StdEncoding); ok && isKoreanAddress(s) {
		return s, true
	}

	urlSafe := strings.NewReplacer("-", "+", "_", "/").Replace(encoded)
	if pad := (4 - len(urlSafe)%4) % 4; pad > 0 {
		urlSafe += strings.Repeat("=", pad)
	}
	if s, ok := decodeBase64(urlSafe, base64.StdEncoding); ok && isKoreanAddress(s) {
		return s, true
	}

	if s, err := url.PathUnescape(encoded); err == nil && !looksMojibake(s) {
		return s, true
	}

	if s, ok := decodeEUCKR(encoded); ok && !looksMojibake(s) {
		return s, true
	}

	return "", false
}

func decodeBase64(s string, enc *base64.Encoding) (string, bool) {
	raw, err := enc.DecodeString(s)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// decodeEUCKR собирает байты из %XX-последовательностей и читает их как EUC-KR
func decodeEUCKR(encoded string) (string, bool) {
	buf := make([]byte, 0, len(encoded))
	for i := 0; i < len(encoded); {
		if encoded[i] == '%' && i+2 < len(encoded) {
			b, err := strconv.ParseUint(encoded[i+1:i+3], 16, 8)
			if err == nil {
				buf = append(buf, byte(b))
				i += 3
				continue
			}
		}
		buf = append(buf, encoded[i])
		i++
	}

	out, err := korean.EUCKR.NewDecoder().Bytes(buf)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func isKoreanAddress(s string) bool {
	if s == "" {
		return false
	}
	return hangulSyllable.MatchString(s) && addressChars.MatchString(s) && !looksMojibake(s)
}

// looksMojibake - грубая проверка на "битый" текст:
// символ замены или меньше половины символов - хангыль и печатный ASCII
func looksMojibake(s string) bool {
	if !utf8.ValidString(s) || strings.ContainsRune(s, utf8.RuneError) {
		return true
	}

	var good, total int
	for _, r := range s {
		total++
		if (r >= 0xAC00 && r <= 0xD7A3) || (r >= 0x20 && r <= 0x7E) {
			good++
		}
	}
	return float64(good) < float64(total)*0.5
}
