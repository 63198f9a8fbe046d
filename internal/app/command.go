package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hilalmustofa/simpleolshop/internal/config"
)

// NewRootCommand はCLIのルートコマンドを生成する。
// サブコマンド省略時はserveとして動作する。
func NewRootCommand(w io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "simpleolshop",
		Short:         "商品・注文管理APIサーバー",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          withConfig(w, "serve", RunServe),
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "APIサーバーを起動する",
			Args:  cobra.NoArgs,
			RunE:  withConfig(w, "serve", RunServe),
		},
		&cobra.Command{
			Use:   "worker",
			Short: "未参照アップロードのクリーンアップジョブを起動する",
			Args:  cobra.NoArgs,
			RunE:  withConfig(w, "worker", RunWorker),
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "データベースマイグレーションを適用する",
			Args:  cobra.NoArgs,
			RunE: withConfig(w, "migrate", func(_ context.Context, cfg *config.Config) error {
				return RunMigrate(cfg)
			}),
		},
		newHealthcheckCommand(),
	)

	return root
}

// newHealthcheckCommand はフル初期化を行わない軽量なヘルスチェックコマンドを生成する。
func newHealthcheckCommand() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "稼働中のAPIサーバーの /health を確認する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunHealthcheck(cmd.Context(), url)
		},
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "5425"
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:"+port, "ヘルスチェック対象のベースURL")

	return cmd
}

// withConfig は設定とロガーを初期化してからrunを実行するRunE関数を返す。
func withConfig(w io.Writer, name string, run func(ctx context.Context, cfg *config.Config) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := Init(w)
		if err != nil {
			return fmt.Errorf("initialization failed: %w", err)
		}

		slog.Info("starting application",
			slog.String("command", name),
			slog.String("port", cfg.ServerPort),
			slog.String("base_url", cfg.BaseURL),
		)

		return run(cmd.Context(), cfg)
	}
}
