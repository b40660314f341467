package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cronyo/internal/service/schedule"
)

// newManager はルール操作用のManagerを作成
func newManager(ctx context.Context) (*schedule.Manager, error) {
	c, err := clients(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.NewManager(c.Events(), c.Functions(), cfg.Namespace, log), nil
}

// buildExpression は --cron / --rate の値からスケジュール式を組み立てる
func buildExpression(cronSpec, rateSpec string) (schedule.Expression, error) {
	switch {
	case cronSpec != "" && rateSpec != "":
		return schedule.Expression{}, errors.New("--cron と --rate は同時に指定できません")
	case cronSpec != "":
		fields := strings.Fields(cronSpec)
		if len(fields) != 6 {
			return schedule.Expression{}, fmt.Errorf("--cron には6つのフィールドを指定してください: %q", cronSpec)
		}
		return schedule.NewCron(fields...)
	case rateSpec != "":
		fields := strings.Fields(rateSpec)
		if len(fields) != 2 {
			return schedule.Expression{}, fmt.Errorf("--rate には値と単位を指定してください（例: \"5 minutes\"）: %q", rateSpec)
		}
		return schedule.NewRate(fields[0], fields[1])
	default:
		return schedule.Expression{}, errors.New("--cron または --rate を指定してください")
	}
}

// parseInput はターゲットに渡すJSON引数を解釈する。省略時は空オブジェクト。
func parseInput(args []string) (any, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return map[string]any{}, nil
	}
	var input any
	if err := json.Unmarshal([]byte(args[0]), &input); err != nil {
		return nil, fmt.Errorf("関数の引数はJSONで指定してください: %w", err)
	}
	return input, nil
}
