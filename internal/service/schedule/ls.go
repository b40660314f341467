package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cronyo/internal/aws"
	"cronyo/internal/service/common"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	schedulertypes "github.com/aws/aws-sdk-go-v2/service/scheduler/types"
)

// Lister はEventBridge RulesとEventBridge Schedulerのスケジュールを一覧する
type Lister struct {
	events    *aws.Events
	schedules *aws.Schedules
	now       func() time.Time
}

// NewLister はListerを作成
func NewLister(events *aws.Events, schedules *aws.Schedules) *Lister {
	return &Lister{events: events, schedules: schedules, now: time.Now}
}

// ListSchedules はスケジュール一覧を取得する
func (l *Lister) ListSchedules(ctx context.Context, opts ListOptions) ([]Schedule, error) {
	var schedules []Schedule

	match, err := common.NewMatcher(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("フィルター %q が不正です: %w", opts.Filter, err)
	}

	// EventBridge Rulesを取得
	if opts.Type == "" || opts.Type == "all" || opts.Type == "rule" {
		rules, err := l.listEventBridgeRules(ctx, opts.Prefix, match)
		if err != nil {
			return nil, fmt.Errorf("EventBridge Rules取得エラー: %w", err)
		}
		schedules = append(schedules, rules...)
	}

	// EventBridge Schedulerを取得
	if opts.Type == "all" || opts.Type == "scheduler" {
		schedulerList, err := l.listEventBridgeSchedulers(ctx, opts.Prefix, match)
		if err != nil {
			return nil, fmt.Errorf("EventBridge Scheduler取得エラー: %w", err)
		}
		schedules = append(schedules, schedulerList...)
	}

	return schedules, nil
}

// listEventBridgeRules はEventBridge Rules（スケジュールタイプ）を取得
func (l *Lister) listEventBridgeRules(ctx context.Context, prefix string, match func(string) bool) ([]Schedule, error) {
	var schedules []Schedule

	rules, err := l.events.ListRules(ctx, prefix)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		name := awssdk.ToString(rule.Name)
		// スケジュール式を持つルールのみ対象
		if awssdk.ToString(rule.ScheduleExpression) == "" || !match(name) {
			continue
		}

		targets, err := l.events.ListTargetsByRule(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("ルール %s のターゲット取得エラー: %w", name, err)
		}

		expression := awssdk.ToString(rule.ScheduleExpression)
		schedules = append(schedules, Schedule{
			Name:       name,
			Type:       "rule",
			Expression: expression,
			State:      string(rule.State),
			Target:     formatTargets(targets),
			Arn:        awssdk.ToString(rule.Arn),
			Next:       l.nextRun(expression, string(rule.State)),
		})
	}

	return schedules, nil
}

// listEventBridgeSchedulers はEventBridge Schedulerを取得
func (l *Lister) listEventBridgeSchedulers(ctx context.Context, prefix string, match func(string) bool) ([]Schedule, error) {
	var schedules []Schedule

	summaries, err := l.schedules.ListSchedules(ctx, prefix)
	if err != nil {
		return nil, err
	}

	for _, sched := range summaries {
		name := awssdk.ToString(sched.Name)
		if !match(name) {
			continue
		}

		out, err := l.schedules.GetSchedule(ctx, name, awssdk.ToString(sched.GroupName))
		if err != nil {
			return nil, fmt.Errorf("スケジュール %s の詳細取得エラー: %w", name, err)
		}

		expression := formatScheduleExpression(out)
		schedules = append(schedules, Schedule{
			Name:       name,
			Type:       "scheduler",
			Expression: expression,
			State:      string(out.State),
			Target:     formatSchedulerTarget(out.Target),
			Arn:        awssdk.ToString(sched.Arn),
			Next:       l.nextRun(expression, string(out.State)),
		})
	}

	return schedules, nil
}

// nextRun は次回実行予定を返す。無効なスケジュールや算出できない式は "-"。
func (l *Lister) nextRun(expression, state string) string {
	if state != StateEnabled {
		return "-"
	}
	expr, err := ParseExpression(expression)
	if err != nil {
		return "-"
	}
	next, err := expr.NextRun(l.now())
	if err != nil {
		return "-"
	}
	return next.Format("2006-01-02 15:04 UTC")
}

// formatTargets はEventBridge Rulesのターゲットを簡潔に表現
func formatTargets(targets []eventbridgetypes.Target) string {
	if len(targets) == 0 {
		return "なし"
	}

	var targetStrs []string
	for _, target := range targets {
		if target.Arn != nil {
			targetStrs = append(targetStrs, formatArn(*target.Arn))
		}
	}
	return strings.Join(targetStrs, ", ")
}

// formatSchedulerTarget はEventBridge Schedulerのターゲットを簡潔に表現
func formatSchedulerTarget(target *schedulertypes.Target) string {
	if target == nil || target.Arn == nil {
		return "なし"
	}
	return formatArn(*target.Arn)
}

// formatArn はARNからサービスとリソース名を抽出して短く表現
func formatArn(arn string) string {
	arnParts := strings.SplitN(arn, ":", 6)
	if len(arnParts) < 6 {
		return arn
	}
	service := arnParts[2]
	resource := arnParts[5]

	switch service {
	case "lambda":
		if strings.HasPrefix(resource, "function:") {
			return "Lambda:" + strings.TrimPrefix(resource, "function:")
		}
	case "states":
		return "StepFunc:" + resource
	case "sns":
		return "SNS:" + resource
	case "sqs":
		return "SQS:" + resource
	case "events":
		return "EventBus:" + resource
	}
	return service + ":" + resource
}

// formatScheduleExpression はEventBridge Schedulerのスケジュール式を構築
func formatScheduleExpression(schedule *scheduler.GetScheduleOutput) string {
	if schedule.ScheduleExpression != nil {
		return *schedule.ScheduleExpression
	}

	// FlexibleTimeWindowがある場合
	if schedule.FlexibleTimeWindow != nil && schedule.FlexibleTimeWindow.Mode == schedulertypes.FlexibleTimeWindowModeFlexible {
		if schedule.FlexibleTimeWindow.MaximumWindowInMinutes != nil {
			return fmt.Sprintf("flexible(%d min)", *schedule.FlexibleTimeWindow.MaximumWindowInMinutes)
		}
	}

	return "不明"
}
