package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// ページングの既定値と上限
const (
	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100
	maxPage        = 10_000_000
)

// pageMeta は一覧レスポンスに含めるページング情報。
type pageMeta struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// parseListQuery はクエリ文字列からページング・絞り込み条件を読み取る。
// 不正値や1未満の値は既定値に置き換え、上限を超える値は上限で切り詰める。
func parseListQuery(r *http.Request) model.ListQuery {
	q := r.URL.Query()

	page := positiveInt(q.Get("page"), defaultPage)
	if page > maxPage {
		page = maxPage
	}
	perPage := positiveInt(q.Get("per_page"), defaultPerPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return model.ListQuery{
		Page:    page,
		PerPage: perPage,
		Name:    strings.TrimSpace(q.Get("name")),
	}
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func metaOf(q model.ListQuery, total int) pageMeta {
	return pageMeta{Total: total, Page: q.Page, PerPage: q.PerPage}
}
