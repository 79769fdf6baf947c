package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/money"
)

func jsonStrategy(_ context.Context, in *Input) (int64, bool) {
	return ScanJSON(in.Responses, in.Tab, in.Profile)
}

// ScanJSON обходит перехваченные ответы в порядке перехвата, а каждое дерево - в глубину.
// Объект проверяется, если его t_type равен коду вкладки. Объект без t_type
// проверяется, только если ни у одного соседа по массиву t_type тоже нет.
func ScanJSON(responses []domain.CapturedResponse, tab domain.TabKind, profile Profile) (int64, bool) {
	s := scanner{
		typeField: profile.TypeField,
		typeCode:  tab.Code(),
		fields:    profile.FieldsFor(tab),
	}

	for _, resp := range responses {
		root, err := decodeOrdered(resp.Body)
		if err != nil {
			continue
		}
		if won, ok := s.walk(root, true); ok {
			return won, true
		}
	}
	return 0, false
}

type scanner struct {
	typeField string
	typeCode  string
	fields    []string
}

func (s scanner) walk(node any, allowUntyped bool) (int64, bool) {
	switch n := node.(type) {
	case []any:
		untypedOK := !s.anyTyped(n)
		for _, item := range n {
			if won, ok := s.walk(item, untypedOK); ok {
				return won, true
			}
		}

	case *object:
		if s.matches(n, allowUntyped) {
			for _, field := range s.fields {
				val, found := n.findContaining(field)
				if !found || val == nil {
					continue
				}
				if won, ok := priceValue(val); ok && won > 0 {
					return won, true
				}
			}
		}
		for _, val := range n.values {
			if won, ok := s.walk(val, true); ok {
				return won, true
			}
		}
	}
	return 0, false
}

func (s scanner) matches(obj *object, allowUntyped bool) bool {
	v, has := obj.get(s.typeField)
	if !has {
		return allowUntyped
	}
	return scalarString(v) == s.typeCode
}

func (s scanner) anyTyped(items []any) bool {
	for _, item := range items {
		if obj, ok := item.(*object); ok {
			if _, has := obj.get(s.typeField); has {
				return true
			}
		}
	}
	return false
}

// priceValue: число - это сумма в единицах 만, строка разбирается парсером.
// Дробные значения умножаются до округления, переполнение отбрасывается.
func priceValue(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			if n > math.MaxInt64/money.ManUnit || n < math.MinInt64/money.ManUnit {
				return 0, false
			}
			return n * money.ManUnit, true
		}
		f, err := t.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		won := math.Round(f * money.ManUnit)
		if won >= math.MaxInt64 || won <= math.MinInt64 {
			return 0, false
		}
		return int64(won), true
	case string:
		won, err := money.ParseAmount(t)
		if err != nil {
			return 0, false
		}
		return won, true
	default:
		return 0, false
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// object сохраняет порядок ключей, как он пришел в ответе
type object struct {
	keys   []string
	values []any
}

func (o *object) get(key string) (any, bool) {
	for i, k := range o.keys {
		if k == key {
			return o.values[i], true
		}
	}
	return nil, false
}

// findContaining - первый ключ, содержащий field без учета регистра
func (o *object) findContaining(field string) (any, bool) {
	needle := strings.ToLower(field)
	for i, k := range o.keys {
		if strings.Contains(strings.ToLower(k), needle) {
			return o.values[i], true
		}
	}
	return nil, false
}

func decodeOrdered(body string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, isDelim := tok.(json.Delim)
	if !isDelim {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.keys = append(obj.keys, key)
			obj.values = append(obj.values, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil

	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}
