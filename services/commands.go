package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownCommand は未定義のコマンド種別です
	ErrUnknownCommand = errors.New("未定義のコマンドです")
	// ErrUnknownResource は未定義のリソース種別です
	ErrUnknownResource = errors.New("未定義のリソースです")
)

// Resource は取得対象のリソース種別です
type Resource int

const (
	ResourceMergeRequests Resource = iota
	ResourceIssues
	ResourceRequirements
	ResourceTestCases
)

// AllResources はすべてのリソース種別です
var AllResources = []Resource{
	ResourceMergeRequests,
	ResourceIssues,
	ResourceRequirements,
	ResourceTestCases,
}

func (r Resource) String() string {
	switch r {
	case ResourceMergeRequests:
		return "merge_requests"
	case ResourceIssues:
		return "issues"
	case ResourceRequirements:
		return "requirements"
	case ResourceTestCases:
		return "test_cases"
	default:
		return fmt.Sprintf("resource(%d)", int(r))
	}
}

// ParseResource はリソース名 (merge_requests / mrs, issues, requirements, test_cases) を解析します
func ParseResource(name string) (Resource, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_")) {
	case "merge_requests", "mrs", "mr":
		return ResourceMergeRequests, nil
	case "issues", "dts":
		return ResourceIssues, nil
	case "requirements", "reqs":
		return ResourceRequirements, nil
	case "test_cases", "cases", "hive":
		return ResourceTestCases, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
}

// CommandKind はワークスペースに対する操作の種別です
type CommandKind int

const (
	CmdLogin CommandKind = iota
	CmdLogout
	CmdFetch
	CmdSetQuery
	CmdSetDateRange
	CmdClearDateRange

	commandKindCount
)

func (k CommandKind) String() string {
	switch k {
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdFetch:
		return "fetch"
	case CmdSetQuery:
		return "set_query"
	case CmdSetDateRange:
		return "set_date_range"
	case CmdClearDateRange:
		return "clear_date_range"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command はワークスペースへの操作要求です。種別ごとに使うフィールドが異なります
type Command struct {
	Kind     CommandKind
	Resource Resource

	// CmdLogin
	Username string
	Password string

	// CmdSetQuery
	Query string

	// CmdSetDateRange
	Start time.Time
	End   time.Time
}

// Result はコマンドの実行結果です
type Result struct {
	Command Command
	Count   int
	Err     error
}

type handlerFunc func(ctx context.Context, cmd Command) (int, error)

// commandTable はコマンド種別ごとの処理を登録します。すべての種別に処理が必要です
func (w *Workspace) commandTable() map[CommandKind]handlerFunc {
	table := map[CommandKind]handlerFunc{
		CmdLogin: func(ctx context.Context, cmd Command) (int, error) {
			return 0, w.Login(ctx, cmd.Username, cmd.Password)
		},
		CmdLogout: func(ctx context.Context, cmd Command) (int, error) {
			w.Client.Logout()
			return 0, nil
		},
		CmdFetch: func(ctx context.Context, cmd Command) (int, error) {
			return w.Fetch(ctx, cmd.Resource)
		},
		CmdSetQuery: func(ctx context.Context, cmd Command) (int, error) {
			v, err := w.view(cmd.Resource)
			if err != nil {
				return 0, err
			}
			v.SetQuery(cmd.Query)
			return v.Len(), nil
		},
		CmdSetDateRange: func(ctx context.Context, cmd Command) (int, error) {
			v, err := w.view(cmd.Resource)
			if err != nil {
				return 0, err
			}
			if err := v.SetDateRange(cmd.Start, cmd.End); err != nil {
				return 0, err
			}
			return v.Len(), nil
		},
		CmdClearDateRange: func(ctx context.Context, cmd Command) (int, error) {
			v, err := w.view(cmd.Resource)
			if err != nil {
				return 0, err
			}
			v.ClearDateRange()
			return v.Len(), nil
		},
	}

	for k := CommandKind(0); k < commandKindCount; k++ {
		if _, ok := table[k]; !ok {
			panic(fmt.Sprintf("コマンド %s の処理が登録されていません", k))
		}
	}

	return table
}

// Dispatch はコマンドを同期的に実行します
func (w *Workspace) Dispatch(ctx context.Context, cmd Command) error {
	_, err := w.run(ctx, cmd)
	return err
}

func (w *Workspace) run(ctx context.Context, cmd Command) (int, error) {
	handler, ok := w.handlers[cmd.Kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Kind)
	}

	logger := w.Logger.With("command", cmd.Kind.String(), "resource", cmd.Resource.String())
	count, err := handler(ctx, cmd)
	if err != nil {
		logger.Warn("コマンド失敗", "error", err)
		return count, err
	}

	logger.Debug("コマンド完了", "count", count)
	return count, nil
}

// Submit はコマンドを別のgoroutineで実行し、結果をチャネルで返します。
// ctx をキャンセルすると実行中の通信も中断されます
func (w *Workspace) Submit(ctx context.Context, cmd Command) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		count, err := w.run(ctx, cmd)
		ch <- Result{Command: cmd, Count: count, Err: err}
	}()
	return ch
}
