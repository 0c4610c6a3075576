package services

import "workdash/models"

// MergeRequestSummary はマージリクエストの集計です
type MergeRequestSummary struct {
	Count     int
	Additions int
	Deletions int
}

// SummarizeMergeRequests は件数と追加・削除行数の合計を集計します
func SummarizeMergeRequests(mrs []models.MergeRequest) MergeRequestSummary {
	s := MergeRequestSummary{Count: len(mrs)}
	for _, mr := range mrs {
		s.Additions += mr.Additions
		s.Deletions += mr.Deletions
	}
	return s
}

// IssueSummary は問題単の集計です
type IssueSummary struct {
	Total    int
	Resolved int
	ByStatus map[string]int
}

// SummarizeIssues は総数・解決済み数・ステータス別件数を集計します
func SummarizeIssues(issues []models.Issue) IssueSummary {
	s := IssueSummary{Total: len(issues), ByStatus: make(map[string]int)}
	for _, issue := range issues {
		if issue.Resolved() {
			s.Resolved++
		}
		s.ByStatus[issue.Status]++
	}
	return s
}

// RequirementSummary は要件の集計です
type RequirementSummary struct {
	Total    int
	ByStatus map[string]int
}

// SummarizeRequirements は総数とステータス別件数を集計します
func SummarizeRequirements(reqs []models.Requirement) RequirementSummary {
	s := RequirementSummary{Total: len(reqs), ByStatus: make(map[string]int)}
	for _, req := range reqs {
		s.ByStatus[req.Status]++
	}
	return s
}
