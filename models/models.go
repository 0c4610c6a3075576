package models

import "encoding/json"

// Cookie はログイン応答から取得したセッションクッキーです
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// SessionState は認証セッションの状態です
type SessionState int

const (
	// Anonymous は未認証状態
	Anonymous SessionState = iota
	// Authenticated は認証済み状態
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// WorkItem はバックエンドから取得する作業項目の共通制約です
type WorkItem interface {
	ItemID() string
	Schema() Schema
}

// MergeRequest はコードレビューのマージリクエストを表します
type MergeRequest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt Timestamp `json:"created_at"`
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
	Status    string    `json:"status"`
}

// ItemID はマージリクエストのIDを返します
func (m MergeRequest) ItemID() string { return m.ID }

// UnmarshalJSON は旧形式のフィールド名 (add_lines / del_lines) も受け付けます
func (m *MergeRequest) UnmarshalJSON(data []byte) error {
	type plain MergeRequest
	aux := struct {
		*plain
		Additions *int `json:"additions"`
		Deletions *int `json:"deletions"`
		AddLines  *int `json:"add_lines"`
		DelLines  *int `json:"del_lines"`
	}{plain: (*plain)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.Additions = firstInt(aux.Additions, aux.AddLines)
	m.Deletions = firstInt(aux.Deletions, aux.DelLines)
	return nil
}

func firstInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

// Issue は問題単（不具合チケット）を表します
type Issue struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Severity   string    `json:"severity"`
	Status     string    `json:"status"`
	CreatedAt  Timestamp `json:"created_at"`
	ResolvedAt Timestamp `json:"resolved_at"`
	Assignee   string    `json:"assignee"`
}

// ItemID は問題単のIDを返します
func (i Issue) ItemID() string { return i.ID }

// Resolved は解決日時が設定されているかを返します
func (i Issue) Resolved() bool { return i.ResolvedAt.Valid }

// Requirement は要件を表します
type Requirement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Version   string    `json:"version"`
	TestCycle string    `json:"test_cycle"`
	StartDate Timestamp `json:"start_date"`
	EndDate   Timestamp `json:"end_date"`
	Status    string    `json:"status"`
	Owner     string    `json:"owner"`
}

// ItemID は要件のIDを返します
func (r Requirement) ItemID() string { return r.ID }

// TestCase はテストファームで失敗したテストケースを表します
type TestCase struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	ErrorMsg *string `json:"error_msg"`
}

// ItemID はテストケースのIDを返します
func (t TestCase) ItemID() string { return t.ID }
