// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は商品名・説明などの自由入力テキストからHTMLを除去し、
// 保存されたテキストがクライアント側でマークアップとして解釈されることを防ぐ。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキスト化のインターフェース。
type TextSanitizer interface {
	// Sanitize は全てのHTMLタグを除去したプレーンテキストを返す。
	// script, styleの内容は破棄し、前後の空白を取り除く。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(s string) string
}

// textSanitizer はbluemondayのStrictPolicyによるTextSanitizerの実装。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxPasses は実体参照の復元でタグが再出現した場合の再処理回数の上限。
const maxPasses = 3

// Sanitize は全てのHTMLタグを除去したプレーンテキストを返す。
// StrictPolicyがエスケープした実体参照（&amp; など）は元の文字に戻し、
// 復元によってタグが現れた場合は結果が変わらなくなるまで再処理する。
func (s *textSanitizer) Sanitize(in string) string {
	out := strings.TrimSpace(in)
	for i := 0; i < maxPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(out)))
		if next == out {
			break
		}
		out = next
	}
	return out
}
