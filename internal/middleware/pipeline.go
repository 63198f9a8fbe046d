package middleware

import (
	"fmt"
	"net/http"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// Phase はパイプライン内でのステージの実行順序を表す。
// ルートに宣言するステージは Phase の昇順でなければならない。
type Phase int

const (
	PhaseRateLimit Phase = iota + 1
	PhaseAuth
	PhaseUpload
	PhaseValidate
)

func (p Phase) String() string {
	switch p {
	case PhaseRateLimit:
		return "ratelimit"
	case PhaseAuth:
		return "auth"
	case PhaseUpload:
		return "upload"
	case PhaseValidate:
		return "validate"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Outcome はステージの実行結果。
// 後続に進むか、エラーレスポンスでリクエストを打ち切るかのいずれか。
type Outcome struct {
	req      *http.Request
	err      *model.APIError
	rollback func()
}

// Continue は後続ステージへ r を渡して処理を続行する。
func Continue(r *http.Request) Outcome {
	return Outcome{req: r}
}

// ContinueWithRollback は処理を続行し、後続ステージが打ち切った場合に rollback を実行する。
// ハンドラに到達した後は rollback は呼ばれない。
func ContinueWithRollback(r *http.Request, rollback func()) Outcome {
	return Outcome{req: r, rollback: rollback}
}

// Terminate はリクエストを打ち切り、err を統一エラーフォーマットで返す。
func Terminate(err *model.APIError) Outcome {
	return Outcome{err: err}
}

// Terminated はリクエストが打ち切られたかを返す。
func (o Outcome) Terminated() bool {
	return o.err != nil
}

// Stage はパイプラインの1段階。
// Run はレスポンスヘッダーを設定してよいが、ボディを書き込んではならない。
type Stage interface {
	Phase() Phase
	Run(w http.ResponseWriter, r *http.Request) Outcome
}

// Pipeline はルート単位で宣言された順序付きステージ列。
type Pipeline struct {
	stages []Stage
}

// NewPipeline はステージ列からPipelineを生成する。
// Phase が逆順に並んでいる場合は起動時の設定ミスとしてpanicする。
func NewPipeline(stages ...Stage) *Pipeline {
	for i := 1; i < len(stages); i++ {
		if stages[i].Phase() < stages[i-1].Phase() {
			panic(fmt.Sprintf("middleware: stage %d (%s) must not run before stage %d (%s)",
				i, stages[i].Phase(), i-1, stages[i-1].Phase()))
		}
	}
	return &Pipeline{stages: stages}
}

// Phases は宣言されたステージの Phase を順に返す。
func (p *Pipeline) Phases() []Phase {
	out := make([]Phase, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Phase()
	}
	return out
}

// Then はステージ列の末尾に h を接続したハンドラを返す。
// いずれかのステージが打ち切った場合、h は実行されない。
func (p *Pipeline) Then(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rollbacks []func()
		for _, s := range p.stages {
			out := s.Run(w, r)
			if out.Terminated() {
				for i := len(rollbacks) - 1; i >= 0; i-- {
					rollbacks[i]()
				}
				WriteAPIError(w, out.err)
				return
			}
			if out.rollback != nil {
				rollbacks = append(rollbacks, out.rollback)
			}
			if out.req != nil {
				r = out.req
			}
		}
		h.ServeHTTP(w, r)
	})
}

// ThenFunc はThenのhttp.HandlerFunc版。
func (p *Pipeline) ThenFunc(fn http.HandlerFunc) http.Handler {
	return p.Then(fn)
}
