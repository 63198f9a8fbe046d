// Package currency は価格文字列をインドネシア・ルピア表記に整形する。
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// rupiahPrefix は通貨記号と数値の間にノーブレークスペースを挟む。
const rupiahPrefix = "Rp\u00a0"

var (
	printer  = message.NewPrinter(language.Indonesian)
	maxInt64 = decimal.NewFromInt(1<<63 - 1)
)

// FormatRupiah は10進数文字列をid-IDロケールのルピア表記に変換する。
// 例: "15000" → "Rp 15.000"、"1500.5" → "Rp 1.500,5"。小数部は最大2桁に丸める。
func FormatRupiah(raw string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid price %q: %w", raw, err)
	}

	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	var formatted string
	if d.Equal(d.Truncate(0)) && d.LessThanOrEqual(maxInt64) {
		formatted = printer.Sprint(number.Decimal(d.IntPart()))
	} else {
		formatted = printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
	}

	return sign + rupiahPrefix + formatted, nil
}
