package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"gopkg.in/yaml.v3"
)

// Export はprefixに前方一致するルールを名前順でエクスポートする（空文字なら全件）。
// スケジュール式を持たないイベントパターンのルールは対象外。
func (m *Manager) Export(ctx context.Context, prefix string) ([]ExportRecord, error) {
	rules, err := m.events.ListRules(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.Slice(rules, func(i, j int) bool {
		return awssdk.ToString(rules[i].Name) < awssdk.ToString(rules[j].Name)
	})

	records := make([]ExportRecord, 0, len(rules))
	for _, rule := range rules {
		if awssdk.ToString(rule.ScheduleExpression) == "" {
			continue
		}
		targets, err := m.events.ListTargetsByRule(ctx, awssdk.ToString(rule.Name))
		if err != nil {
			return nil, err
		}
		records = append(records, exportRule(rule, targets))
	}
	return records, nil
}

// ExportYAML はエクスポート結果をYAMLで返す
func (m *Manager) ExportYAML(ctx context.Context, prefix string) (string, error) {
	records, err := m.Export(ctx, prefix)
	if err != nil {
		return "", err
	}
	return renderYAML(records)
}

func (m *Manager) exportYAML(ctx context.Context, rule types.Rule) (string, error) {
	targets, err := m.events.ListTargetsByRule(ctx, awssdk.ToString(rule.Name))
	if err != nil {
		return "", err
	}
	return renderYAML(exportRule(rule, targets))
}

// exportRule はルールとターゲットを人が読める形に変換する
func exportRule(rule types.Rule, targets []types.Target) ExportRecord {
	record := ExportRecord{
		Name:        awssdk.ToString(rule.Name),
		Description: awssdk.ToString(rule.Description),
		State:       string(rule.State),
	}

	raw := awssdk.ToString(rule.ScheduleExpression)
	if expr, err := ParseExpression(raw); err == nil {
		switch expr.Kind {
		case KindCron:
			record.Cron = expr.Cron
		case KindRate:
			record.Rate = expr.RateText()
		}
	} else if inner, ok := unwrap(raw, "cron"); ok {
		record.Cron = inner
	} else if inner, ok := unwrap(raw, "rate"); ok {
		record.Rate = inner
	}

	if len(targets) > 0 {
		target := targets[0]
		record.Target = &ExportTarget{
			Name:  functionNameFromArn(awssdk.ToString(target.Arn)),
			Input: decodeInput(awssdk.ToString(target.Input)),
		}
	}
	return record
}

// functionNameFromArn はARNから関数名（エイリアス付きならそれも含む）を取り出す
func functionNameFromArn(arn string) string {
	if idx := strings.LastIndex(arn, "function:"); idx >= 0 {
		return arn[idx+len("function:"):]
	}
	return arn
}

// decodeInput はターゲット入力をJSONとして復元する。JSONでなければ文字列のまま返す。
func decodeInput(raw string) any {
	if raw == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func renderYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
