package schedule

import (
	"context"
	"fmt"

	"cronyo/internal/aws"

	"github.com/rs/zerolog"
)

// Resolver は関数名からLambda関数のARNを解決する
type Resolver struct {
	functions *aws.Functions
	ns        Namespace
	log       zerolog.Logger
}

// NewResolver はResolverを作成
func NewResolver(functions *aws.Functions, ns Namespace, log zerolog.Logger) *Resolver {
	return &Resolver{functions: functions, ns: ns, log: log}
}

// Resolve は名前そのもの、次にnamespace付き名の順で関数を探す。
// フォールバックするのは「見つからない」系のエラーのときだけ。
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	for _, candidate := range r.ns.Candidates(name) {
		out, err := r.functions.GetFunction(ctx, candidate)
		if err != nil {
			if aws.IsNotFound(err) {
				r.log.Debug().Str("function", candidate).Msg("Lambda関数なし")
				continue
			}
			return "", err
		}
		return aws.QueryString(out, "Configuration.FunctionArn")
	}
	return "", fmt.Errorf("%w: %s", ErrTargetNotFound, name)
}
