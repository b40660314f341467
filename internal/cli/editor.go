package cli

import (
	"context"
	"os"
	"os/exec"
)

// DefaultEditor は $EDITOR 未設定時に使うエディタ
const DefaultEditor = "vi"

// Editor は $EDITOR を返す（未設定ならvi）
func Editor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return DefaultEditor
}

// OpenEditor はファイルをエディタで開き、終了まで待つ
func OpenEditor(ctx context.Context, editor, path string) error {
	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
