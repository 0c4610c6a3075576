package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"workdash/api"
	"workdash/config"
	"workdash/services"
	"workdash/utils"
)

type globalOptions struct {
	logLevel      string
	logFormat     string
	timeout       time.Duration
	maxConcurrent int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		utils.LogError("処理に失敗しました", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "workdash",
		Short:         "作業項目 同期クライアント",
		Long:          "リモートの追跡システムにログインし、マージリクエスト・問題単・要件・テストケースを取得します。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)。未指定の場合は LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "ログ形式 (text, json)。未指定の場合は LOG_FORMAT")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "1リクエストのタイムアウト (0の場合は REQUEST_TIMEOUT)")
	root.PersistentFlags().IntVar(&opts.maxConcurrent, "concurrent", 0, "並列取得の最大数 (0の場合は MAX_CONCURRENT)")

	root.AddCommand(
		newAuthCheckCmd(opts),
		newSyncCmd(opts),
		newListCmd(opts),
	)

	return root
}

// setup は設定を読み込み、ワークスペースを組み立てます
func setup(opts *globalOptions, stderr io.Writer) (*services.Workspace, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	// フラグ指定がある場合のみ上書き
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}
	if opts.timeout > 0 {
		cfg.RequestTimeout = opts.timeout
	}
	if opts.maxConcurrent > 0 {
		cfg.MaxConcurrent = opts.maxConcurrent
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	utils.SetDefault(logger)

	client := api.NewSessionClient(cfg, api.WithLogger(logger))
	return services.NewWorkspace(cfg, client, logger), nil
}

func newAuthCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "auth-check",
		Short: "ログインできるかを確認します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := setup(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if err := ws.Dispatch(cmd.Context(), services.Command{Kind: services.CmdLogin}); err != nil {
				return fmt.Errorf("認証エラー: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "認証成功: %s\n", ws.Config.LoginURL)
			for _, c := range ws.Client.Cookies().All() {
				fmt.Fprintf(out, "  cookie %s (domain=%q path=%q)\n", c.Name, c.Domain, c.Path)
			}
			return nil
		},
	}
}

func newSyncCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "ログインして設定済みのすべてのリソースを取得します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := setup(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			report, syncErr := services.NewSyncService(ws).RunSync(cmd.Context())
			if report != nil {
				printReport(cmd.OutOrStdout(), ws, report)
			}
			return syncErr
		},
	}
}

func printReport(out io.Writer, ws *services.Workspace, report *services.SyncReport) {
	resources := make([]services.Resource, 0, len(report.Fetched))
	for r := range report.Fetched {
		resources = append(resources, r)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i] < resources[j] })

	for _, r := range resources {
		fmt.Fprintf(out, "%-15s %d 件\n", r, report.Fetched[r])
	}
	for r, err := range report.Failed {
		fmt.Fprintf(out, "%-15s 失敗: %v\n", r, err)
	}

	if _, ok := report.Fetched[services.ResourceMergeRequests]; ok {
		s := services.SummarizeMergeRequests(ws.MergeRequests.All())
		fmt.Fprintf(out, "MR: %d 件 (+%d / -%d)\n", s.Count, s.Additions, s.Deletions)
	}
	if _, ok := report.Fetched[services.ResourceIssues]; ok {
		s := services.SummarizeIssues(ws.Issues.All())
		fmt.Fprintf(out, "問題単: %d 件 (解決済み %d)\n", s.Total, s.Resolved)
	}
	if _, ok := report.Fetched[services.ResourceRequirements]; ok {
		s := services.SummarizeRequirements(ws.Requirements.All())
		fmt.Fprintf(out, "要件: %d 件\n", s.Total)
	}
	fmt.Fprintf(out, "合計実行時間: %s\n", report.Elapsed.Round(time.Millisecond))
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var query, from, to string

	cmd := &cobra.Command{
		Use:   "list <merge_requests|issues|requirements|test_cases>",
		Short: "リソースを取得し、検索語と期間で絞り込んで表示します",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := services.ParseResource(args[0])
			if err != nil {
				return err
			}

			commands := []services.Command{
				{Kind: services.CmdLogin},
				{Kind: services.CmdFetch, Resource: resource},
				{Kind: services.CmdSetQuery, Resource: resource, Query: query},
			}

			if from != "" || to != "" {
				start, end, err := parseDateRange(from, to)
				if err != nil {
					return err
				}
				commands = append(commands, services.Command{
					Kind: services.CmdSetDateRange, Resource: resource, Start: start, End: end,
				})
			}

			ws, err := setup(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			for _, c := range commands {
				if err := ws.Dispatch(cmd.Context(), c); err != nil {
					return fmt.Errorf("%s: %w", c.Kind, err)
				}
			}

			printVisible(cmd.OutOrStdout(), ws, resource)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "検索語 (大文字小文字を区別しない部分一致)")
	cmd.Flags().StringVar(&from, "from", "", "期間の開始日 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "期間の終了日 (YYYY-MM-DD)")

	return cmd
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--from と --to は両方指定してください")
	}

	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--from の形式が不正です: %w", err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--to の形式が不正です: %w", err)
	}

	return start, end, nil
}

func printVisible(out io.Writer, ws *services.Workspace, resource services.Resource) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch resource {
	case services.ResourceMergeRequests:
		fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tCHANGES\tAUTHOR\tTITLE")
		for _, mr := range ws.MergeRequests.Visible() {
			fmt.Fprintf(w, "%s\t%s\t%s\t+%d/-%d\t%s\t%s\n",
				mr.ID, mr.Status, mr.CreatedAt, mr.Additions, mr.Deletions, mr.Author, mr.Title)
		}
	case services.ResourceIssues:
		fmt.Fprintln(w, "ID\tSEVERITY\tSTATUS\tCREATED\tRESOLVED\tASSIGNEE\tTITLE")
		for _, issue := range ws.Issues.Visible() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				issue.ID, issue.Severity, issue.Status, issue.CreatedAt, issue.ResolvedAt, issue.Assignee, issue.Title)
		}
	case services.ResourceRequirements:
		fmt.Fprintln(w, "ID\tVERSION\tSTATUS\tSTART\tEND\tOWNER\tTITLE")
		for _, req := range ws.Requirements.Visible() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				req.ID, req.Version, req.Status, req.StartDate, req.EndDate, req.Owner, req.Title)
		}
	case services.ResourceTestCases:
		fmt.Fprintln(w, "ID\tSTATUS\tNAME\tERROR")
		for _, tc := range ws.TestCases.Visible() {
			msg := ""
			if tc.ErrorMsg != nil {
				msg = *tc.ErrorMsg
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tc.ID, tc.Status, tc.Name, msg)
		}
	}
}
