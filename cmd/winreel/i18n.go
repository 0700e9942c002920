package main

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		"Failed to save session info: %s":   "セッション情報の保存に失敗しました: %s",
		"Container verification failed: %s": "コンテナの検証に失敗しました: %s",
	})
}
