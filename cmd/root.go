package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cronyo/internal/aws"
	"cronyo/internal/config"
	"cronyo/internal/logger"
	"cronyo/internal/service/schedule"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// AppName はコマンド名
const AppName = "cronyo"

var (
	region     string
	profile    string
	configPath string
	debug      bool
)

// コマンド実行前に初期化される
var (
	cfg        *config.Loaded
	log        zerolog.Logger
	awsCtx     aws.Context
	awsClients *aws.Clients
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   AppName,
	Short: "EventBridgeのスケジュールルールとLambda関数を管理するCLI",
	Long: `cronyo はEventBridgeのスケジュールルールとLambda関数の紐付けを管理します。

ルールの追加・更新・削除・有効化・無効化・エクスポートに加えて、
HTTPリクエストに署名して送信する http_get / http_post 関数をデプロイできます。

使用例:
  ` + AppName + ` configure
  ` + AppName + ` deploy
  ` + AppName + ` add http_get '{"url": "https://example.com/"}' --cron "0 12 * * ? *" --name nightly-report
  ` + AppName + ` export`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	if schedule.IsWarning(err) {
		// ルールの重複・不在は警告ログのみで正常終了
		return
	}
	fmt.Fprintf(os.Stderr, "❌ エラー: %v\n", err)
	stop()
	os.Exit(1)
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&region, "region", "R", "", "AWSリージョン（未指定なら設定ファイル・SDKのデフォルト）")
	RootCmd.PersistentFlags().StringVarP(&profile, "profile", "P", "", "AWSプロファイル")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "設定ファイルのパス（デフォルト: ./config.yml → ~/.cronyo/config.yml）")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "デバッグログを出力")

	// コマンド実行前に共通で設定とプロファイルを解決する
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		log = logger.New(os.Stderr, debug)

		// ヘルプ・バージョン表示の場合はスキップ
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		log.Debug().Str("path", cfg.Path).Bool("found", cfg.Found).Str("namespace", cfg.Namespace).Msg("設定を読み込みました")

		resolveProfile()
		if region == "" {
			region = cfg.Region
		}
		awsCtx = aws.Context{Profile: profile, Region: region}
		return nil
	}
}

// resolveProfile はフラグ → AWS_PROFILE → 設定ファイルの順でプロファイルを決める
func resolveProfile() {
	if profile != "" {
		return
	}
	if envProfile := os.Getenv("AWS_PROFILE"); envProfile != "" {
		profile = envProfile
		log.Debug().Str("profile", profile).Msg("環境変数 AWS_PROFILE を使用します")
		return
	}
	if cfg != nil && cfg.Profile != "" {
		profile = cfg.Profile
		log.Debug().Str("profile", profile).Msg("設定ファイルのプロファイルを使用します")
	}
}

// clients は初回呼び出し時にAWS設定を読み込む
func clients(ctx context.Context) (*aws.Clients, error) {
	if awsClients != nil {
		return awsClients, nil
	}
	if cfg == nil {
		return nil, errors.New("設定が読み込まれていません")
	}
	c, err := aws.NewAwsClients(ctx, awsCtx)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みエラー: %w", err)
	}
	awsClients = c
	return awsClients, nil
}
