package main

import (
	"os"

	"cronyo/internal/logger"
	"cronyo/internal/signer"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	log := logger.NewJSON(os.Stdout, os.Getenv("CRONYO_LOG_LEVEL"))

	// 秘密鍵は同梱のconfig.ymlまたはCRONYO_SECRET_KEYから読む
	h, err := signer.FromEnvironment(log)
	if err != nil {
		log.Fatal().Err(err).Msg("ハンドラーの初期化に失敗")
	}

	lambda.Start(h.Post)
}
