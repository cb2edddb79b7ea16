package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "minimum" or "property"); templates reference it as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalog = map[string]map[string]string{
	"en": {
		"missing_required":    "is missing and it is required",
		"missing_dependency":  "the presence of this property requires that {requires} also be present",
		"type_mismatch":       "{got} value found, but a {expected} is required",
		"unsupported_type":    "field type '{type}' is not supported",
		"disallowed_value":    "disallowed value was matched",
		"unexpected_property": "the property {property} is not defined in the schema and the schema does not allow additional properties",
		"extra_items":         "there are more values in the array than are allowed by the items and additionalProperties restrictions",
		"too_few_items":       "there must be a minimum of {minItems} in the array",
		"too_many_items":      "there must be a maximum of {maxItems} in the array",
		"pattern_mismatch":    "does not match the regex pattern {pattern}",
		"too_short":           "must be at least {minLength} characters long",
		"too_long":            "may only be {maxLength} characters long",
		"below_minimum":       "must have a minimum value of {minimum}",
		"above_maximum":       "must have a maximum value of {maximum}",
		"too_many_decimals":   "may only have {maxDecimal} digits of decimal places",
		"not_in_enum":         "does not have a value in the enumeration {enum}",
		"invalid_schema":      "invalid schema: {reason}",
		"depth_exceeded":      "maximum nesting depth of {maxDepth} exceeded",
	},
	"ja": {
		"missing_required":    "必須項目が不足しています",
		"missing_dependency":  "このプロパティには {requires} も必要です",
		"type_mismatch":       "{got} が見つかりましたが {expected} が必要です",
		"unsupported_type":    "型 '{type}' はサポートされていません",
		"disallowed_value":    "許可されていない値です",
		"unexpected_property": "プロパティ {property} はスキーマに定義されておらず、追加のプロパティは許可されていません",
		"extra_items":         "配列の要素数が items と additionalProperties の制約を超えています",
		"too_few_items":       "配列には少なくとも {minItems} 個の要素が必要です",
		"too_many_items":      "配列の要素は最大 {maxItems} 個までです",
		"pattern_mismatch":    "正規表現 {pattern} に一致しません",
		"too_short":           "{minLength} 文字以上である必要があります",
		"too_long":            "{maxLength} 文字以内である必要があります",
		"below_minimum":       "{minimum} 以上である必要があります",
		"above_maximum":       "{maximum} 以下である必要があります",
		"too_many_decimals":   "小数点以下は {maxDecimal} 桁までです",
		"not_in_enum":         "列挙値 {enum} のいずれでもありません",
		"invalid_schema":      "スキーマが不正です: {reason}",
		"depth_exceeded":      "ネストの深さが上限 {maxDepth} を超えました",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalog[t.lang][code]
	if !ok {
		tmpl, ok = catalog["en"][code]
	}
	if !ok {
		return code
	}
	return render(tmpl, data)
}

// render substitutes {name} placeholders; unknown placeholders are left as-is.
func render(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := catalog[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// Languages lists the languages known to the built-in dictionary.
func Languages() []string { return []string{"en", "ja"} }

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
