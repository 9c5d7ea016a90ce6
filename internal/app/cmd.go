package app

import (
	"fmt"
	"io"
)

// Command はnutriscanの起動モード（サブコマンド）を表す。
type Command string

const (
	// CommandServe は栄養画面・履歴画面のAPIサーバーを起動する。
	CommandServe Command = "serve"
	// CommandWorker は製品クリーンアップのワーカーを起動する。
	CommandWorker Command = "worker"
	// CommandMigrate はproductsとhistory_entriesのマイグレーションを適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のAPIサーバーの/healthを確認する。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp は使い方を表示する。
	CommandHelp Command = "help"
)

// commands は使い方の表示順。
var commands = []struct {
	cmd  Command
	desc string
}{
	{CommandServe, "栄養画面・スキャン履歴のHTTP APIを起動する（デフォルト）"},
	{CommandWorker, "保持期間を過ぎた未参照の製品を日次で削除する"},
	{CommandMigrate, "データベースマイグレーションを適用する"},
	{CommandHealthcheck, "SERVER_PORTで起動中のAPIサーバーの/healthを確認する"},
	{CommandHelp, "この使い方を表示する"},
}

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "worker":
		return CommandWorker
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	case "help", "-h", "--help":
		return CommandHelp
	default:
		return CommandServe
	}
}

// WriteUsage はnutriscanの使い方をwに書き込む。
func WriteUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nutriscan <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.cmd, c.desc)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment: DATABASE_URL (required), SERVER_PORT, LOG_LEVEL, APP_FLAVOR")
}
