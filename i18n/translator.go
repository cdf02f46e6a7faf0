package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message; "detail" is
// appended after the code's text when present.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"parse_error":       "parse error",
		"invalid_type":      "invalid type",
		"overflow":          "value out of range",
		"unsupported":       "unsupported input",
		"too_big":           "array exceeds capacity",
		"io_error":          "input source failed",
		"allocation_failed": "string allocation failed",
		"max_depth":         "nesting too deep",
		"truncated":         "truncated",
		"invalid_schema":    "invalid schema",
	},
	"ja": {
		"parse_error":       "解析エラー",
		"invalid_type":      "型が不正です",
		"overflow":          "値が範囲外です",
		"unsupported":       "未対応の入力です",
		"too_big":           "配列の容量を超えています",
		"io_error":          "入力ソースが失敗しました",
		"allocation_failed": "文字列の確保に失敗しました",
		"max_depth":         "ネストが深すぎます",
		"truncated":         "打ち切られました",
		"invalid_schema":    "スキーマが不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		msg = code
	}
	if d := data["detail"]; d != "" {
		msg += ": " + d
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dict[lang]; !ok {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
