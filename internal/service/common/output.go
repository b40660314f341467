package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// PrintSimpleList はシンプルな箇条書きリストを表示
func PrintSimpleList(w io.Writer, output ListOutput) {
	fmt.Fprintf(w, "%s:\n", output.Title)

	if len(output.Items) == 0 {
		fmt.Fprintf(w, "該当する%sはありませんでした\n", output.ResourceName)
		return
	}

	for _, item := range output.Items {
		fmt.Fprintf(w, "  - %s\n", item)
	}

	if output.ShowCount {
		fmt.Fprintf(w, "\n合計: %d個の%s\n", len(output.Items), output.ResourceName)
	}
}

// PrintTable はテーブル形式でデータを表示する。
// 列幅は表示幅で揃えるので全角文字や絵文字を含んでも崩れない。
func PrintTable(w io.Writer, title string, columns []TableColumn, data [][]string) {
	if title != "" {
		fmt.Fprintf(w, "\n%s:\n", title)
	}

	colWidths := make([]int, len(columns))
	for i, col := range columns {
		colWidths[i] = max(col.Width, runewidth.StringWidth(col.Header))
	}
	for _, row := range data {
		for i, cell := range row {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
			}
		}
	}

	// ヘッダー
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = runewidth.FillRight(col.Header, colWidths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " "))

	// 区切り線
	for i := range columns {
		cells[i] = strings.Repeat("-", colWidths[i])
	}
	fmt.Fprintln(w, strings.Join(cells, " "))

	// データ行
	for _, row := range data {
		line := make([]string, 0, len(columns))
		for i, cell := range row {
			if i < len(columns) {
				line = append(line, runewidth.FillRight(cell, colWidths[i]))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(line, " "), " "))
	}
}
