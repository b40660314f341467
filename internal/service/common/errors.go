package common

// メッセージの絵文字定数
const (
	ErrorIcon    = "❌"
	SuccessIcon  = "✅"
	WarningIcon  = "⚠️"
	SearchIcon   = "🔍"
	InfoIcon     = "📋"
	ProcessIcon  = "🔄"
	PartyIcon    = "🎉"
	EnabledIcon  = "🟢"
	DisabledIcon = "🔴"
)

// エラーメッセージフォーマット定数
const (
	ListErrorFormat = "%s一覧の取得に失敗: %w"

	EnableSuccessFormat  = "%s %s を有効化しました\n"
	DisableSuccessFormat = "%s %s を無効化しました\n"
	DeleteSuccessFormat  = "%s %s を削除しました\n"
	CreateSuccessFormat  = "%s %s を作成しました\n"
	UpdateSuccessFormat  = "%s %s を更新しました\n"
)
