package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"
)

// Schedules はEventBridge Scheduler参照用のゲートウェイ
type Schedules struct {
	api SchedulerAPI
}

// NewSchedules はSchedulerゲートウェイを作成
func NewSchedules(api SchedulerAPI) *Schedules {
	return &Schedules{api: api}
}

// ListSchedules はprefixに前方一致するスケジュールを全ページ分取得する
func (s *Schedules) ListSchedules(ctx context.Context, prefix string) ([]types.ScheduleSummary, error) {
	var summaries []types.ScheduleSummary

	input := &scheduler.ListSchedulesInput{}
	if prefix != "" {
		input.NamePrefix = aws.String(prefix)
	}
	paginator := scheduler.NewListSchedulesPaginator(s.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapRemote(ServiceScheduler, "ListSchedules", err)
		}
		summaries = append(summaries, page.Schedules...)
	}
	return summaries, nil
}

// GetSchedule はスケジュール1件の詳細を取得する
func (s *Schedules) GetSchedule(ctx context.Context, name, group string) (*scheduler.GetScheduleOutput, error) {
	input := &scheduler.GetScheduleInput{Name: aws.String(name)}
	if group != "" {
		input.GroupName = aws.String(group)
	}
	out, err := s.api.GetSchedule(ctx, input)
	if err != nil {
		return nil, wrapRemote(ServiceScheduler, "GetSchedule", err)
	}
	return out, nil
}
