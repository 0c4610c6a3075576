package models

// 各リソースの検索対象フィールド

// MergeRequestFields はマージリクエストの検索対象 (タイトル・作成者・ID)
var MergeRequestFields = []func(MergeRequest) string{
	func(m MergeRequest) string { return m.Title },
	func(m MergeRequest) string { return m.Author },
	func(m MergeRequest) string { return m.ID },
}

// IssueFields は問題単の検索対象 (タイトル・担当者・ID)
var IssueFields = []func(Issue) string{
	func(i Issue) string { return i.Title },
	func(i Issue) string { return i.Assignee },
	func(i Issue) string { return i.ID },
}

// RequirementFields は要件の検索対象 (タイトル・オーナー・ID・バージョン)
var RequirementFields = []func(Requirement) string{
	func(r Requirement) string { return r.Title },
	func(r Requirement) string { return r.Owner },
	func(r Requirement) string { return r.ID },
	func(r Requirement) string { return r.Version },
}

// TestCaseFields はテストケースの検索対象 (名前・ID・エラーメッセージ)
var TestCaseFields = []func(TestCase) string{
	func(t TestCase) string { return t.Name },
	func(t TestCase) string { return t.ID },
	func(t TestCase) string {
		if t.ErrorMsg == nil {
			return ""
		}
		return *t.ErrorMsg
	},
}
