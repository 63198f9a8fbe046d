package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pgUniqueViolation = "23505"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern はILIKE用の部分一致パターンを生成する。
// ワイルドカード文字はリテラルとして扱う。
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// nameFilter はnameが空でない場合にILIKE条件を組み立てる。
// 戻り値の条件句は先頭に " WHERE " を含む。
func nameFilter(column, name string, args []interface{}) (string, []interface{}) {
	if name == "" {
		return "", args
	}
	args = append(args, containsPattern(name))
	return fmt.Sprintf(" WHERE %s ILIKE $%d", column, len(args)), args
}

// validID はidがUUIDとして解釈できるかを判定する。
// UUID列に不正な文字列を渡すとPostgreSQLが構文エラーを返すため、事前に弾く。
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isUniqueViolation はerrが一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}
