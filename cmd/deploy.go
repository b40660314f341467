package cmd

import (
	"fmt"
	"os"

	"cronyo/internal/service/common"
	"cronyo/internal/service/deploy"

	"github.com/spf13/cobra"
)

var (
	deployNoPreflight bool
	deployArtifacts   string
	rollbackAlias     string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "署名関数とextra_wiringの関数をデプロイ",
	Long: `IAMロールを用意し、http_post / http_get とextra_wiringのLambda関数をデプロイします。
各関数は --artifacts 配下のビルド済み bootstrap と config.yml をzipにまとめて作成・更新し、
エイリアス live を新しいバージョンに向けます。古いバージョンは5つを残して削除します。

使用例:
  ` + AppName + ` deploy
  ` + AppName + ` deploy --artifacts ./dist --no-preflight`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := clients(cmd.Context())
		if err != nil {
			return err
		}

		if !deployNoPreflight {
			account, err := deploy.Preflight(cmd.Context(), c.Region(), c.Identity(), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s アカウント %s (%s) にデプロイします\n", common.SearchIcon, account, c.Region())
		}

		d := deploy.NewDeployer(c.Roles(), c.Functions(), cfg.Config, deploy.Options{
			ArtifactsDir: deployArtifacts,
			Out:          os.Stderr,
		}, log)
		results, err := d.Run(cmd.Context())
		if err != nil {
			return err
		}

		data := make([][]string, 0, len(results))
		for _, r := range results {
			action := "更新"
			if r.Created {
				action = "作成"
			}
			data = append(data, []string{r.FunctionName, r.Version, action, r.AliasArn})
		}
		common.PrintTable(cmd.OutOrStdout(), "デプロイ結果", []common.TableColumn{
			{Header: "関数"},
			{Header: "バージョン"},
			{Header: "操作"},
			{Header: "エイリアス"},
		}, data)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s デプロイが完了しました\n", common.PartyIcon)
		return nil
	},
}

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "AWS認証情報とリージョンを確認",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := clients(cmd.Context())
		if err != nil {
			return err
		}
		account, err := deploy.Preflight(cmd.Context(), c.Region(), c.Identity(), log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s アカウント: %s リージョン: %s\n", common.SuccessIcon, account, c.Region())
		return nil
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "エイリアスを1つ前のバージョンに戻す",
	Long: `デプロイ済みの各関数について、エイリアスを現在の1つ前のバージョンに戻します。

使用例:
  ` + AppName + ` rollback
  ` + AppName + ` rollback --alias live`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := clients(cmd.Context())
		if err != nil {
			return err
		}

		d := deploy.NewDeployer(c.Roles(), c.Functions(), cfg.Config, deploy.Options{}, log)
		results, rollbackErr := d.Rollback(cmd.Context(), rollbackAlias)

		items := make([]string, 0, len(results))
		for _, r := range results {
			items = append(items, fmt.Sprintf("%s: %s → %s", r.FunctionName, r.From, r.To))
		}
		common.PrintSimpleList(cmd.OutOrStdout(), common.ListOutput{
			Title:        common.ProcessIcon + " ロールバックした関数",
			Items:        items,
			ResourceName: "関数",
			ShowCount:    true,
		})
		return rollbackErr
	},
}

func init() {
	deployCmd.Flags().BoolVar(&deployNoPreflight, "no-preflight", false, "認証情報とリージョンの確認を省略")
	deployCmd.Flags().StringVar(&deployArtifacts, "artifacts", "dist", "ビルド済みバイナリのディレクトリ")

	rollbackCmd.Flags().StringVar(&rollbackAlias, "alias", deploy.LiveAlias, "戻すエイリアス")

	RootCmd.AddCommand(deployCmd, preflightCmd, rollbackCmd)
}
