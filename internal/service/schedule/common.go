package schedule

import (
	"fmt"
	"io"

	"cronyo/internal/service/common"
)

// DisplaySchedules はスケジュール一覧を表示する
func DisplaySchedules(w io.Writer, schedules []Schedule) {
	fmt.Fprintf(w, "\n📅 スケジュール一覧\n")

	if len(schedules) == 0 {
		fmt.Fprintln(w, "スケジュールが見つかりませんでした")
		return
	}

	columns := []common.TableColumn{
		{Header: "Name"},
		{Header: "Schedule"},
		{Header: "State"},
		{Header: "Target"},
		{Header: "Next"},
	}

	// EventBridge RulesとSchedulerでデータを分離
	var ruleData [][]string
	var schedulerData [][]string

	for _, s := range schedules {
		stateWithEmoji := s.State
		switch s.State {
		case StateEnabled:
			stateWithEmoji = common.EnabledIcon + " " + s.State
		case StateDisabled:
			stateWithEmoji = common.DisabledIcon + " " + s.State
		}

		next := s.Next
		if next == "" {
			next = "-"
		}
		row := []string{s.Name, s.Expression, stateWithEmoji, s.Target, next}
		if s.Type == "rule" {
			ruleData = append(ruleData, row)
		} else {
			schedulerData = append(schedulerData, row)
		}
	}

	if len(ruleData) > 0 {
		common.PrintTable(w, "EventBridge Rules (Schedule)", columns, ruleData)
	}

	if len(schedulerData) > 0 {
		if len(ruleData) > 0 {
			fmt.Fprintln(w)
		}
		common.PrintTable(w, "EventBridge Scheduler", columns, schedulerData)
	}

	fmt.Fprintf(w, "\n合計: %d個のスケジュール (Rules: %d, Scheduler: %d)\n", len(schedules), len(ruleData), len(schedulerData))
}
