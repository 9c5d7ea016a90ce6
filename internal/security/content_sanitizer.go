// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はクライアントから受け取った製品名・ブランド名などの
// テキストからマークアップを除去し、画面やCSVにそのまま出力できる
// プレーンテキストに変換する。bluemondayのStrictPolicyを使用する。
package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はテキストサニタイズ機能のインターフェースを定義する。
// 製品スナップショットの登録時とスキャン記録時に使用される。
type ContentSanitizerService interface {
	// Sanitize はすべてのHTMLタグを除去したプレーンテキストを返す。
	// script, styleタグは中身ごと除去される。
	// エンティティはデコードされ、前後の空白は取り除かれる。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string

	// SanitizeURL はhttpまたはhttpsの絶対URLのみを通過させる。
	// それ以外（javascript:, data:, 相対URL、不正なURL）は空文字列を返す。
	SanitizeURL(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はHTMLタグを除去したプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	// StrictPolicyは&や'をエスケープするため、保存用にデコードし直す
	cleaned := html.UnescapeString(s.policy.Sanitize(raw))
	return strings.TrimSpace(cleaned)
}

// SanitizeURL はhttpまたはhttpsの絶対URLのみを返す。
func (s *contentSanitizer) SanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	default:
		return ""
	}
}
