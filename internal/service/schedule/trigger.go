package schedule

import (
	"context"
	"fmt"
	"io"
	"time"

	"cronyo/internal/aws"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/schollz/progressbar/v3"
)

// triggerExpression はトリガー中に一時的に設定するスケジュール
const triggerExpression = "rate(1 minute)"

// minTriggerWait はEventBridgeが変更を認識してrate(1 minute)が発火するまでの最低待機秒数
const minTriggerWait = 70

// waitForExecution は実行を待機する。テストでは差し替える。
var waitForExecution = progressWait

// Trigger はルールを一時的に rate(1 minute) に変更して手動実行する。
// 名前とnamespace付き名の両方にマッチした場合は両方を対象にし、待機後に元の式と状態へ戻す。
func (m *Manager) Trigger(ctx context.Context, w io.Writer, name string, opts TriggerOptions) error {
	rules, err := m.resolve(ctx, name)
	if err != nil {
		return err
	}

	// 1. 現在のルール情報を取得
	fmt.Fprintf(w, "📝 現在のスケジュール設定を取得中...\n")
	var originals []types.Rule
	for _, rule := range rules {
		if awssdk.ToString(rule.ScheduleExpression) == "" {
			return fmt.Errorf("'%s' はスケジュールルールではありません", awssdk.ToString(rule.Name))
		}
		fmt.Fprintf(w, "  └─ %s: %s (%s)\n", awssdk.ToString(rule.Name), awssdk.ToString(rule.ScheduleExpression), rule.State)
		originals = append(originals, rule)
	}

	// 2. 確実に元に戻すためのdefer
	var changed []types.Rule
	defer func() {
		if opts.NoWait || len(changed) == 0 {
			return
		}
		fmt.Fprintln(w, "\n🔄 元のスケジュールに復元中...")
		for _, rule := range changed {
			if err := m.restore(context.WithoutCancel(ctx), rule); err != nil {
				fmt.Fprintf(w, "⚠️  %s の復元に失敗: %v\n", awssdk.ToString(rule.Name), err)
				continue
			}
			fmt.Fprintf(w, "  └─ 復元後: %s %s\n", awssdk.ToString(rule.Name), awssdk.ToString(rule.ScheduleExpression))
		}
	}()

	// 3. スケジュールを rate(1 minute) に変更
	fmt.Fprintln(w, "\n🔄 スケジュールを1分後実行に変更中...")
	for _, rule := range originals {
		_, err := m.events.PutRule(ctx, aws.PutRuleInput{
			Name:               awssdk.ToString(rule.Name),
			ScheduleExpression: triggerExpression,
			Description:        awssdk.ToString(rule.Description),
			State:              types.RuleStateEnabled,
		})
		if err != nil {
			return fmt.Errorf("スケジュール変更に失敗: %w", err)
		}
		changed = append(changed, rule)
	}
	fmt.Fprintf(w, "  └─ 新しい設定: %s\n", triggerExpression)

	// 4. 実行待機
	if opts.NoWait {
		fmt.Fprintln(w, "\n⚠️  --no-waitが指定されました。スケジュールは自動的に復元されません。")
		return nil
	}

	seconds := opts.Timeout
	if seconds < minTriggerWait {
		seconds = minTriggerWait
		fmt.Fprintf(w, "\n⚠️  最低待機時間%d秒に調整しました\n", minTriggerWait)
	}
	if err := waitForExecution(ctx, w, seconds); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n✅ 処理が完了しました")
	return nil
}

// restore はトリガー前の式・説明・状態に戻す
func (m *Manager) restore(ctx context.Context, rule types.Rule) error {
	_, err := m.events.PutRule(ctx, aws.PutRuleInput{
		Name:               awssdk.ToString(rule.Name),
		ScheduleExpression: awssdk.ToString(rule.ScheduleExpression),
		Description:        awssdk.ToString(rule.Description),
		State:              rule.State,
	})
	return err
}

// progressWait はプログレスバーを表示しながら待機する
func progressWait(ctx context.Context, w io.Writer, seconds int) error {
	fmt.Fprintf(w, "\n⏳ スケジュール実行を待機中（%d秒）...\n", seconds)

	bar := progressbar.NewOptions(seconds,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("待機中..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for i := 0; i < seconds; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}

	_ = bar.Finish()
	fmt.Fprintln(w, "\n✓ 実行待機完了")
	return nil
}
