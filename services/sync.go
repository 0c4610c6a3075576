package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"workdash/models"
	"workdash/utils"
)

// SyncService はログインと全リソースの取得をまとめて処理します
type SyncService struct {
	workspace *Workspace
}

// NewSyncService は新しい同期サービスを作成します
func NewSyncService(ws *Workspace) *SyncService {
	return &SyncService{workspace: ws}
}

// SyncReport は同期処理の結果です
type SyncReport struct {
	Fetched map[Resource]int
	Failed  map[Resource]error
	Elapsed time.Duration
}

// Succeeded は失敗したリソースが無いかを返します
func (r *SyncReport) Succeeded() bool {
	return len(r.Failed) == 0
}

// SyncAll は設定済みのリソースを並列に取得します (並列数は MaxConcurrent まで)。
// 失敗したリソースのビューは以前の内容のまま残ります
func (s *SyncService) SyncAll(ctx context.Context) (*SyncReport, error) {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "リソース同期")

	ws := s.workspace
	resources := ws.Configured()
	report := &SyncReport{
		Fetched: make(map[Resource]int),
		Failed:  make(map[Resource]error),
	}

	if len(resources) == 0 {
		return report, fmt.Errorf("同期対象のリソースがありません: %w", ErrEndpointNotConfigured)
	}

	ws.Logger.Info("同期を開始します", "resources", len(resources), "max_concurrent", ws.Config.MaxConcurrent)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(ws.Config.MaxConcurrent)

	for _, resource := range resources {
		g.Go(func() error {
			count, err := ws.Fetch(ctx, resource)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				ws.Logger.Error("取得に失敗しました", "resource", resource.String(), "error", err)
				report.Failed[resource] = err
				return nil
			}
			ws.Logger.Info("取得しました", "resource", resource.String(), "count", count)
			report.Fetched[resource] = count
			return nil
		})
	}

	_ = g.Wait()
	report.Elapsed = time.Since(startTime)

	var errs []error
	for _, resource := range resources {
		if err, ok := report.Failed[resource]; ok {
			errs = append(errs, fmt.Errorf("%s: %w", resource, err))
		}
	}

	ws.Logger.Info("同期が完了しました", "success", len(report.Fetched), "failed", len(report.Failed))
	return report, errors.Join(errs...)
}

// RunSync はログインしてから全リソースを同期します。既に認証済みの場合はログインを省略します
func (s *SyncService) RunSync(ctx context.Context) (*SyncReport, error) {
	ws := s.workspace

	if ws.Client.State() != models.Authenticated {
		if err := ws.Login(ctx, "", ""); err != nil {
			return nil, fmt.Errorf("ログインエラー: %w", err)
		}
		ws.Logger.Info("ログイン成功")
	}

	return s.SyncAll(ctx)
}
