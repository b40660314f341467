package cmd

import (
	"fmt"
	"strings"

	"cronyo/internal/aws"
	"cronyo/internal/service/common"
	"cronyo/internal/service/schedule"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	ruleCron        string
	ruleRate        string
	ruleName        string
	ruleDescription string
	exportPrefix    string
	exportQuery     string
)

var addCmd = &cobra.Command{
	Use:   "add FUNCTION [INPUT_JSON]",
	Short: "スケジュールルールを追加",
	Long: `Lambda関数を定期実行するEventBridgeルールを作成します。

FUNCTION は関数名、namespace付きの関数名（例: http_get → cronyo-http_get）、ARNのいずれかです。
INPUT_JSON は関数に渡すペイロードで、省略すると {} になります。
--name を省略するとランダムな名前が付きます。同名のルールが既にある場合は何もしません。

使用例:
  ` + AppName + ` add http_get '{"url": "https://example.com/"}' --cron "0 12 * * ? *" --name nightly-report
  ` + AppName + ` add http_post '{"url": "https://example.com/hook"}' --rate "5 minutes"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := ruleInput(args)
		if err != nil {
			return err
		}
		m, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		name, err := m.Add(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), common.CreateSuccessFormat, common.SuccessIcon, "ルール "+name)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update FUNCTION [INPUT_JSON] --name NAME",
	Short: "スケジュールルールを更新",
	Long: `既存ルールのスケジュール式・ターゲット・説明を上書きします。
名前とnamespace付きの名前の両方にマッチした場合は両方を更新します。

使用例:
  ` + AppName + ` update http_get '{"url": "https://example.com/v2"}' --rate "1 hour" --name nightly-report`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := ruleInput(args)
		if err != nil {
			return err
		}
		m, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		if err := m.Update(cmd.Context(), in); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), common.UpdateSuccessFormat, common.SuccessIcon, "ルール "+in.Name)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "スケジュールルールを削除",
	Long: `ルールとそのターゲットを削除します。削除前に内容をログへ出力します。

使用例:
  ` + AppName + ` delete nightly-report`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		names, err := m.Delete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRuleNames(cmd, common.DeleteSuccessFormat, common.SuccessIcon, names)
		return nil
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable NAME",
	Short: "スケジュールルールを有効化",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		names, err := m.Enable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRuleNames(cmd, common.EnableSuccessFormat, common.EnabledIcon, names)
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "スケジュールルールを無効化",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		names, err := m.Disable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRuleNames(cmd, common.DisableSuccessFormat, common.DisabledIcon, names)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "スケジュールルールをYAMLでエクスポート",
	Long: `スケジュールルールを名前順にYAMLで出力します。
--query を指定するとJMESPath式で絞り込んだ結果を出力します。

使用例:
  ` + AppName + ` export
  ` + AppName + ` export --prefix nightly
  ` + AppName + ` export --query "[?state=='DISABLED'].name"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		if exportQuery == "" {
			out, err := m.ExportYAML(cmd.Context(), exportPrefix)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}

		records, err := m.Export(cmd.Context(), exportPrefix)
		if err != nil {
			return err
		}
		result, err := aws.Query(records, exportQuery)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("YAMLへの変換に失敗: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// ruleInput はadd / updateの引数とフラグをRuleInputにまとめる
func ruleInput(args []string) (schedule.RuleInput, error) {
	expr, err := buildExpression(ruleCron, ruleRate)
	if err != nil {
		return schedule.RuleInput{}, err
	}
	input, err := parseInput(args[1:])
	if err != nil {
		return schedule.RuleInput{}, err
	}
	return schedule.RuleInput{
		Expression:  expr.String(),
		Function:    args[0],
		Input:       input,
		Name:        ruleName,
		Description: ruleDescription,
	}, nil
}

func printRuleNames(cmd *cobra.Command, format, icon string, names []string) {
	fmt.Fprintf(cmd.OutOrStdout(), format, icon, "ルール "+strings.Join(names, ", "))
}

func init() {
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVar(&ruleCron, "cron", "", "cron式の6フィールド（例: \"0 12 * * ? *\"）")
		c.Flags().StringVar(&ruleRate, "rate", "", "rate式の値と単位（例: \"5 minutes\"）")
		c.Flags().StringVar(&ruleName, "name", "", "ルール名")
		c.Flags().StringVar(&ruleDescription, "description", "", "ルールの説明")
		c.MarkFlagsOneRequired("cron", "rate")
		c.MarkFlagsMutuallyExclusive("cron", "rate")
	}
	_ = updateCmd.MarkFlagRequired("name")

	exportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "ルール名の前方一致（省略時は全件）")
	exportCmd.Flags().StringVar(&exportQuery, "query", "", "出力を絞り込むJMESPath式")

	RootCmd.AddCommand(addCmd, updateCmd, deleteCmd, enableCmd, disableCmd, exportCmd)
}
