package common

// TableColumn はテーブルの列定義
type TableColumn struct {
	Header string
	Width  int // 0の場合は内容に合わせる
}

// ListOutput はリスト表示の共通構造体
type ListOutput struct {
	Title        string   // 例: "デプロイ済み関数"
	Items        []string // 表示するアイテムのリスト
	ResourceName string   // 例: "ルール", "関数"
	ShowCount    bool     // 合計数を表示するか
}
