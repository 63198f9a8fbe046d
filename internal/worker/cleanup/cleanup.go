// Package cleanup はどの商品からも参照されていないアップロード画像の自動削除ジョブを提供する。
// 商品作成の途中で失敗したリクエストや削除済み商品が残した画像を定期的に回収する。
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hilalmustofa/simpleolshop/internal/upload"
)

// PictureLister は商品が参照している画像パスの一覧を取得する。
// repository.ProductRepository が実装する。
type PictureLister interface {
	ListPicturePaths(ctx context.Context) ([]string, error)
}

// FileStore はアップロードディレクトリの操作を抽象化する。upload.Uploader が実装する。
type FileStore interface {
	Dir() string
	Remove(storedPath string) error
}

// CleanupJob は参照されていないアップロード画像の削除ジョブ。
// 冪等であり、削除対象がない場合も正常終了する。
type CleanupJob struct {
	pictures PictureLister
	files    FileStore
	logger   *slog.Logger
	now      func() time.Time

	// Grace はこの期間より新しいファイルを削除対象外とする（デフォルト: 10分）。
	// アップロード直後で商品レコードがまだ作成されていないファイルを保護する。
	Grace time.Duration
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(pictures PictureLister, files FileStore, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		pictures: pictures,
		files:    files,
		logger:   logger,
		now:      time.Now,
		Grace:    10 * time.Minute,
	}
}

// Start は指定間隔のティッカーでジョブを起動する。
// 起動直後に1回実行し、コンテキストがキャンセルされるまで継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("アップロードクリーンアップジョブを開始しました",
		slog.Duration("interval", interval),
		slog.Duration("grace", j.Grace),
	)

	j.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("アップロードクリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *CleanupJob) runLogged(ctx context.Context) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("アップロードクリーンアップの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}

// Run はアップロードディレクトリを走査し、参照されておらず猶予期間を過ぎたファイルを削除する。
// 個別ファイルの削除失敗はログに記録して処理を継続する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := j.now()

	paths, err := j.pictures.ListPicturePaths(ctx)
	if err != nil {
		return fmt.Errorf("参照中の画像パスの取得に失敗: %w", err)
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[upload.FileName(p)] = struct{}{}
	}

	entries, err := os.ReadDir(j.files.Dir())
	if errors.Is(err, os.ErrNotExist) {
		j.logger.Info("アップロードディレクトリが存在しないためスキップしました",
			slog.String("dir", j.files.Dir()),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("アップロードディレクトリの読み取りに失敗: %w", err)
	}

	var deleted, failed int
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			continue
		}
		if _, ok := referenced[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// 走査中に削除されたファイル
			continue
		}
		if start.Sub(info.ModTime()) < j.Grace {
			continue
		}

		if err := j.files.Remove(entry.Name()); err != nil {
			failed++
			j.logger.Warn("未参照ファイルの削除に失敗しました",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		deleted++
	}

	j.logger.Info("アップロードクリーンアップジョブが完了しました",
		slog.Int("deleted_count", deleted),
		slog.Int("failed_count", failed),
		slog.Int("referenced_count", len(referenced)),
		slog.Float64("duration_ms", float64(j.now().Sub(start).Milliseconds())),
	)
	return nil
}
