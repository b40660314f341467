package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Clients はAWS設定と各サービスクライアントを管理
type Clients struct {
	cfg aws.Config

	// 遅延初期化されるクライアント群
	eventBridge *eventbridge.Client
	scheduler   *scheduler.Client
	lambda      *lambda.Client
	iam         *iam.Client
	sts         *sts.Client
}

// NewAwsClients は認証情報からAWS設定を読み込んでクライアント管理構造体を作成
func NewAwsClients(ctx context.Context, awsCtx Context) (*Clients, error) {
	cfg, err := LoadAwsConfig(ctx, awsCtx)
	if err != nil {
		return nil, err
	}

	return &Clients{cfg: cfg}, nil
}

// NewClientsFromConfig は読み込み済みのAWS設定からクライアント管理構造体を作成
func NewClientsFromConfig(cfg aws.Config) *Clients {
	return &Clients{cfg: cfg}
}

// Region は解決済みのリージョンを返す
func (c *Clients) Region() string {
	return c.cfg.Region
}

// EventBridge は遅延初期化でEventBridgeクライアントを取得
func (c *Clients) EventBridge() *eventbridge.Client {
	if c.eventBridge == nil {
		c.eventBridge = eventbridge.NewFromConfig(c.cfg)
	}
	return c.eventBridge
}

// Scheduler は遅延初期化でEventBridge Schedulerクライアントを取得
func (c *Clients) Scheduler() *scheduler.Client {
	if c.scheduler == nil {
		c.scheduler = scheduler.NewFromConfig(c.cfg)
	}
	return c.scheduler
}

// Lambda は遅延初期化でLambdaクライアントを取得
func (c *Clients) Lambda() *lambda.Client {
	if c.lambda == nil {
		c.lambda = lambda.NewFromConfig(c.cfg)
	}
	return c.lambda
}

// Iam は遅延初期化でIAMクライアントを取得
func (c *Clients) Iam() *iam.Client {
	if c.iam == nil {
		c.iam = iam.NewFromConfig(c.cfg)
	}
	return c.iam
}

// Sts は遅延初期化でSTSクライアントを取得
func (c *Clients) Sts() *sts.Client {
	if c.sts == nil {
		c.sts = sts.NewFromConfig(c.cfg)
	}
	return c.sts
}

// Events はEventBridgeのゲートウェイを返す
func (c *Clients) Events() *Events {
	return NewEvents(c.EventBridge())
}

// Schedules はEventBridge Schedulerのゲートウェイを返す
func (c *Clients) Schedules() *Schedules {
	return NewSchedules(c.Scheduler())
}

// Functions はLambdaのゲートウェイを返す
func (c *Clients) Functions() *Functions {
	return NewFunctions(c.Lambda())
}

// Roles はIAMロールのゲートウェイを返す
func (c *Clients) Roles() *Roles {
	return NewRoles(c.Iam())
}

// Identity はSTSのゲートウェイを返す
func (c *Clients) Identity() *Identity {
	return NewIdentity(c.Sts())
}
