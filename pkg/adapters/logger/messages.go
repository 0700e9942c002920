package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Run lifecycle
		"Recording %s to %s at %d fps":                   "%s を %s に %d fps で録画中",
		"Recording finished: %d frames, %d ms, %d bytes": "録画完了: %d フレーム, %d ms, %d バイト",
		"Interrupted, draining remaining frames...":      "中断されました。残りのフレームを書き出し中...",
		"Stopping capture, draining %d remaining frames": "キャプチャを停止し、残り %d フレームを書き出し中",
		"Output saved to %s":                             "出力を %s に保存しました",

		// Capture component
		"Capture started at %v intervals":   "%v 間隔でキャプチャを開始しました",
		"Capture stopped after %d frames":   "%d フレームでキャプチャを停止しました",
		"Frame %d skipped: %s":              "フレーム %d をスキップしました: %s",
		"Launching headless browser for %s": "%s のためにヘッドレスブラウザを起動中",

		// Encoder component
		"Video track: %dx%d at %d fps":                 "ビデオトラック: %dx%d, %d fps",
		"Finalizing container with %d samples":         "%d サンプルでコンテナを確定中",
		"Salvaged %d samples into truncated container": "%d サンプルを途中までのコンテナに退避しました",
		"Salvage flush failed: %s":                     "退避フラッシュに失敗しました: %s",
		"Container verified: %d samples, %d ms":        "コンテナ検証完了: %d サンプル, %d ms",
	})
}
