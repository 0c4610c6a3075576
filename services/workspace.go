package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"workdash/api"
	"workdash/config"
	"workdash/filter"
	"workdash/models"
	"workdash/utils"
)

// ErrEndpointNotConfigured はリソースのエンドポイントが未設定であることを表します
var ErrEndpointNotConfigured = errors.New("エンドポイントが設定されていません")

// Workspace は起動時に一度だけ作成し、各コンポーネントへ明示的に渡すアプリケーションの状態です
type Workspace struct {
	Config *config.Config
	Logger *slog.Logger
	Client *api.SessionClient

	MergeRequests *View[models.MergeRequest]
	Issues        *View[models.Issue]
	Requirements  *View[models.Requirement]
	TestCases     *View[models.TestCase]

	handlers map[CommandKind]handlerFunc
}

// NewWorkspace は設定とセッションクライアントからワークスペースを作成します
func NewWorkspace(cfg *config.Config, client *api.SessionClient, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = utils.Logger()
	}

	w := &Workspace{
		Config: cfg,
		Logger: logger,
		Client: client,

		MergeRequests: NewView(models.MergeRequestFields,
			filter.TimestampOf(func(m models.MergeRequest) models.Timestamp { return m.CreatedAt })),
		Issues: NewView(models.IssueFields,
			filter.TimestampOf(func(i models.Issue) models.Timestamp { return i.CreatedAt })),
		Requirements: NewView(models.RequirementFields,
			filter.TimestampOf(func(r models.Requirement) models.Timestamp { return r.StartDate })),
		TestCases: NewView[models.TestCase](models.TestCaseFields, nil),
	}
	w.handlers = w.commandTable()

	return w
}

// resourceView はリソースの種類によらないビュー操作です
type resourceView interface {
	SetQuery(query string)
	SetDateRange(start, end time.Time) error
	ClearDateRange()
	Len() int
}

func (w *Workspace) view(resource Resource) (resourceView, error) {
	switch resource {
	case ResourceMergeRequests:
		return w.MergeRequests, nil
	case ResourceIssues:
		return w.Issues, nil
	case ResourceRequirements:
		return w.Requirements, nil
	case ResourceTestCases:
		return w.TestCases, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownResource, resource)
	}
}

// endpoint はリソースの取得先URLを返します
func (w *Workspace) endpoint(resource Resource) (string, error) {
	var raw string
	switch resource {
	case ResourceMergeRequests:
		raw = w.Config.MergeRequestsURL
	case ResourceIssues:
		raw = w.Config.IssuesURL
	case ResourceRequirements:
		raw = w.Config.RequirementsURL
	case ResourceTestCases:
		raw = w.Config.TestCasesURL
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownResource, resource)
	}

	if raw == "" {
		return "", fmt.Errorf("%s: %w", resource, ErrEndpointNotConfigured)
	}
	return w.Config.ResolveURL(raw)
}

// Configured は取得先が設定されているリソースを返します
func (w *Workspace) Configured() []Resource {
	var result []Resource
	for _, resource := range AllResources {
		if _, err := w.endpoint(resource); err == nil {
			result = append(result, resource)
		}
	}
	return result
}

// Login は設定の認証情報 (引数が空の場合) でログインします。拒否された場合は *api.AuthError を返します
func (w *Workspace) Login(ctx context.Context, username, password string) error {
	if username == "" {
		username = w.Config.Username
	}
	if password == "" {
		password = w.Config.Password
	}

	loginURL, err := w.Config.ResolveURL(w.Config.LoginURL)
	if err != nil {
		return err
	}
	if loginURL == "" {
		return fmt.Errorf("ログイン: %w", ErrEndpointNotConfigured)
	}

	return w.Client.Authenticate(ctx, loginURL, username, password)
}

// Fetch はリソースを取得し、成功した場合のみビューの全件を置き換えます。取得件数を返します
func (w *Workspace) Fetch(ctx context.Context, resource Resource) (int, error) {
	url, err := w.endpoint(resource)
	if err != nil {
		return 0, err
	}

	switch resource {
	case ResourceMergeRequests:
		return fetchInto(ctx, w.Client, w.MergeRequests, url)
	case ResourceIssues:
		return fetchInto(ctx, w.Client, w.Issues, url)
	case ResourceRequirements:
		return fetchInto(ctx, w.Client, w.Requirements, url)
	case ResourceTestCases:
		return fetchInto(ctx, w.Client, w.TestCases, url)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownResource, resource)
	}
}

func fetchInto[T models.WorkItem](ctx context.Context, client *api.SessionClient, view *View[T], url string) (int, error) {
	items, err := api.FetchCollection[T](ctx, client, url)
	if err != nil {
		return 0, err
	}
	view.Replace(items)
	return len(items), nil
}
