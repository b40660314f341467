package cmd

import (
	"fmt"

	"cronyo/internal/cli"
	"cronyo/internal/config"
	"cronyo/internal/service/common"

	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "設定ファイルを作成・編集",
	Long: `設定ファイルがなければ新しい secret_key を埋め込んだ雛形を作成し、$EDITOR で開きます。
$EDITOR が未設定の場合は vi を使います。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Path
		if !cfg.Found {
			if err := config.Generate(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s 設定ファイル %s を作成しました\n", common.SuccessIcon, path)
		}
		return openEditor(cmd, path)
	},
}

func openEditor(cmd *cobra.Command, path string) error {
	editor := cli.Editor()
	if err := cli.OpenEditor(cmd.Context(), editor, path); err != nil {
		return fmt.Errorf("エディタ %s の起動に失敗: %w", editor, err)
	}
	return nil
}

func init() {
	RootCmd.AddCommand(configureCmd)
}
