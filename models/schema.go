package models

// Schema はJSON要素のキー定義です。キーは大文字小文字を区別します
type Schema struct {
	// Required の各グループはいずれか1つのキーが null 以外で必要 (2つ目以降は旧形式の別名)
	Required [][]string
	Optional []string
}

// Keys は既知のキーをすべて返します
func (s Schema) Keys() []string {
	var keys []string
	for _, group := range s.Required {
		keys = append(keys, group...)
	}
	return append(keys, s.Optional...)
}

var (
	mergeRequestSchema = Schema{
		Required: [][]string{
			{"id"}, {"title"}, {"author"}, {"created_at"},
			{"additions", "add_lines"}, {"deletions", "del_lines"},
			{"status"},
		},
	}
	issueSchema = Schema{
		Required: [][]string{{"id"}, {"title"}, {"severity"}, {"status"}, {"created_at"}, {"assignee"}},
		Optional: []string{"resolved_at"},
	}
	requirementSchema = Schema{
		Required: [][]string{
			{"id"}, {"title"}, {"version"}, {"test_cycle"},
			{"start_date"}, {"end_date"}, {"status"}, {"owner"},
		},
	}
	testCaseSchema = Schema{
		Required: [][]string{{"id"}, {"name"}, {"status"}},
		Optional: []string{"error_msg"},
	}
)

func (MergeRequest) Schema() Schema { return mergeRequestSchema }
func (Issue) Schema() Schema        { return issueSchema }
func (Requirement) Schema() Schema  { return requirementSchema }
func (TestCase) Schema() Schema     { return testCaseSchema }
