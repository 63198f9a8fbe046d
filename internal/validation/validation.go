// Package validation は宣言順に評価されるフィールド検証ルールを提供する。
// 最初に違反したルールのメッセージのみを返す（first-error-wins）。
package validation

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Fields は検証対象の入力値。キーはフィールド名。
// JSONボディはjson.Decoder.UseNumberでデコードした値、multipartはstringを格納する。
type Fields map[string]any

// Constraint は単一フィールドの値に対する制約。
// presentはフィールドが入力に含まれていたかを表す。
type Constraint func(value any, present bool) bool

// Rule はフィールド名、制約、違反時メッセージの組。
type Rule struct {
	Field   string
	Check   Constraint
	Message string
}

// Violation はルール違反を表す。
type Violation struct {
	Field   string
	Message string
}

// Error はerrorインターフェースを実装する。
func (v *Violation) Error() string {
	return v.Message
}

// Validate はrulesを宣言順に評価し、最初の違反をViolationとして返す。
// 違反がない場合はnilを返す。
func Validate(rules []Rule, input Fields) *Violation {
	for _, r := range rules {
		v, ok := input[r.Field]
		if !r.Check(v, ok) {
			return &Violation{Field: r.Field, Message: r.Message}
		}
	}
	return nil
}

// String は文字列または数値の入力値を文字列として取り出す。
// それ以外の型（オブジェクト、配列、真偽値、null）はfalseを返す。
func String(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Length は文字数（rune数）が[min, max]の範囲にあることを要求する。
func Length(min, max int) Constraint {
	return func(v any, present bool) bool {
		if !present {
			return false
		}
		s, ok := String(v)
		if !ok {
			return false
		}
		n := utf8.RuneCountInString(s)
		return n >= min && n <= max
	}
}

// MaxBytes はUTF-8エンコード後のバイト長がmax以下であることを要求する。
// bcryptは72バイトを超える入力を受け付けないため、パスワードに併用する。
func MaxBytes(max int) Constraint {
	return func(v any, present bool) bool {
		if !present {
			return false
		}
		s, ok := String(v)
		if !ok {
			return false
		}
		return len(s) <= max
	}
}

// Int は整数値が[min, max]の範囲にあることを要求する。
// 数値文字列も受け付けるが、小数は受け付けない。
func Int(min, max int) Constraint {
	return func(v any, present bool) bool {
		if !present {
			return false
		}
		s, ok := String(v)
		if !ok {
			return false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return false
		}
		return n >= min && n <= max
	}
}

// Decimal は値が10進数として解釈できることを要求する。
func Decimal() Constraint {
	return func(v any, present bool) bool {
		if !present {
			return false
		}
		s, ok := String(v)
		if !ok {
			return false
		}
		_, err := decimal.NewFromString(strings.TrimSpace(s))
		return err == nil
	}
}

// Email は表示名を含まない単一のメールアドレスであることを要求する。
func Email() Constraint {
	return func(v any, present bool) bool {
		if !present {
			return false
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		addr, err := mail.ParseAddress(s)
		if err != nil {
			return false
		}
		return addr.Address == s
	}
}

// LengthMessage は長さ制約の標準メッセージを生成する。
func LengthMessage(field string, min, max int) string {
	return fmt.Sprintf("%s length should be %d to %d characters", field, min, max)
}
