package cmd

import (
	"fmt"

	"cronyo/internal/service/common"
	"cronyo/internal/service/schedule"

	"github.com/spf13/cobra"
)

var (
	scheduleType   string
	scheduleFilter string
	scheduleAll    bool
	// trigger 用フラグ
	triggerTimeout int
	triggerNoWait  bool
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "スケジュール一覧を表示",
	Long: `EventBridge Rules（スケジュールタイプ）とEventBridge Schedulerの一覧を表示します。
デフォルトではnamespaceで始まるルールのみを表示します。

例:
  ` + AppName + ` ls                      # namespace配下のルールを表示
  ` + AppName + ` ls --all                # 全てのルールを表示
  ` + AppName + ` ls --type all           # RulesとSchedulerの両方を表示
  ` + AppName + ` ls --filter "*report*"  # 名前でフィルター`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := clients(cmd.Context())
		if err != nil {
			return err
		}

		opts := schedule.ListOptions{
			Type:   scheduleType,
			Filter: scheduleFilter,
		}
		if !scheduleAll {
			opts.Prefix = cfg.Namespace
		}

		lister := schedule.NewLister(c.Events(), c.Schedules())
		schedules, err := lister.ListSchedules(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf(common.ListErrorFormat, "スケジュール", err)
		}

		schedule.DisplaySchedules(cmd.OutOrStdout(), schedules)
		return nil
	},
}

var triggerCmd = &cobra.Command{
	Use:   "trigger NAME",
	Short: "スケジュールルールを手動実行",
	Long: `ルールを一時的に"rate(1 minute)"に変更し、実行を待ってから元の式と状態に戻します。

例:
  ` + AppName + ` trigger nightly-report
  ` + AppName + ` trigger nightly-report --no-wait  # 待機せずに終了（元に戻さない）`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context())
		if err != nil {
			return err
		}

		opts := schedule.TriggerOptions{
			Timeout: triggerTimeout,
			NoWait:  triggerNoWait,
		}
		if err := m.Trigger(cmd.Context(), cmd.OutOrStdout(), args[0], opts); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().StringVarP(&scheduleType, "type", "t", "rule", "表示するタイプ (rule|scheduler|all)")
	lsCmd.Flags().StringVarP(&scheduleFilter, "filter", "f", "", "名前のフィルター（ワイルドカード可）")
	lsCmd.Flags().BoolVarP(&scheduleAll, "all", "a", false, "namespace以外のルールも表示")

	triggerCmd.Flags().IntVar(&triggerTimeout, "timeout", 90, "実行待機時間（秒）")
	triggerCmd.Flags().BoolVar(&triggerNoWait, "no-wait", false, "実行を待たずに終了")

	RootCmd.AddCommand(lsCmd, triggerCmd)
}
