package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"WaveSentinel/internal/calculator"
	"WaveSentinel/internal/collector"
	"WaveSentinel/internal/model"
	"WaveSentinel/internal/notifier"
)

const (
	defaultTopN = 10
	maxTopN     = 50
)

// Options controls what a watchlist scan covers and when it alerts.
type Options struct {
	Watchlist       []string
	Intervals       []string
	DefaultInterval string
	Limit           int
	Concurrency     int
	MinConfidence   int
}

// ScanResult is the outcome of one watchlist scan.
type ScanResult struct {
	RunID   string
	Reports []*collector.Report
	Alerts  []*collector.Report
	Failed  []string
}

// Scheduler manages the cron scan and answers bot commands.
type Scheduler struct {
	cron      *cron.Cron
	collector *collector.Collector
	notifier  notifier.Notifier
	opts      Options
	log       zerolog.Logger
	ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n notifier.Notifier, opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		collector: col,
		notifier:  n,
		opts:      opts,
		log:       logger.With().Str("component", "scheduler").Logger(),
		ctx:       ctx,
	}
}

// Register adds the watchlist scan under the given cron spec (seconds field first).
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunScanNow executes the scan immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	res, err := s.ScanWatchlist(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("watchlist scan")
		return
	}
	s.sendAlerts(res)
}

// ScanWatchlist analyses every watchlist symbol on every configured interval.
// Individual failures are collected in Failed and do not stop the scan.
func (s *Scheduler) ScanWatchlist(ctx context.Context) (*ScanResult, error) {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()
	log.Info().Int("symbols", len(s.opts.Watchlist)).Strs("intervals", s.opts.Intervals).Msg("scan started")

	type job struct{ symbol, interval string }
	var jobs []job
	for _, sym := range s.opts.Watchlist {
		for _, iv := range s.opts.Intervals {
			jobs = append(jobs, job{sym, iv})
		}
	}

	reports := make([]*collector.Report, len(jobs))
	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			rep, err := s.collector.Analyze(gctx, j.symbol, j.interval, s.opts.Limit)
			if err != nil {
				log.Warn().Err(err).Str("symbol", j.symbol).Str("interval", j.interval).Msg("analysis failed")
				mu.Lock()
				failed = append(failed, j.symbol+"/"+j.interval)
				mu.Unlock()
				return nil
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan %s cancelled: %w", runID, err)
	}

	res := &ScanResult{RunID: runID, Failed: failed}
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		res.Reports = append(res.Reports, rep)
		if s.shouldAlert(rep.Result) {
			res.Alerts = append(res.Alerts, rep)
		}
	}
	log.Info().Int("analysed", len(res.Reports)).Int("alerts", len(res.Alerts)).Int("failed", len(failed)).Msg("scan finished")
	return res, nil
}

func (s *Scheduler) shouldAlert(r model.AnalysisResult) bool {
	return r.Kind != model.PatternNone && r.Confidence >= s.opts.MinConfidence
}

func (s *Scheduler) sendAlerts(res *ScanResult) {
	for _, rep := range res.Alerts {
		s.trySend(notifier.FormatAnalysis(rep))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats append the bot name: /analyze@WaveBot
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/analyze":
		return s.cmdAnalyze(ctx, args)
	case "/top":
		return s.cmdTop(ctx, args)
	case "/fib":
		return cmdFib(args)
	case "/scan":
		res, err := s.ScanWatchlist(ctx)
		if err != nil {
			return fmt.Sprintf("❌ 扫描失败: %v", err)
		}
		s.sendAlerts(res)
		return notifier.FormatScanSummary(res.RunID, len(res.Reports), len(res.Alerts), res.Failed)
	default:
		return helpText
	}
}

const helpText = "可用命令:\n" +
	"• /analyze SYMBOL [INTERVAL]\n" +
	"• /top [N]\n" +
	"• /fib START END\n" +
	"• /scan"

func (s *Scheduler) cmdAnalyze(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "用法: /analyze SYMBOL [INTERVAL]"
	}
	interval := s.opts.DefaultInterval
	if len(args) > 1 {
		interval = args[1]
	}
	rep, err := s.collector.Analyze(ctx, args[0], interval, s.opts.Limit)
	switch {
	case errors.Is(err, collector.ErrInvalidRequest):
		return fmt.Sprintf("❌ 参数错误: %v", err)
	case err != nil:
		s.log.Error().Err(err).Str("symbol", args[0]).Msg("analyze command")
		return fmt.Sprintf("❌ 数据获取失败: %v", err)
	}
	return notifier.FormatAnalysis(rep)
}

func (s *Scheduler) cmdTop(ctx context.Context, args []string) string {
	n := defaultTopN
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return "用法: /top [N]"
		}
		n = min(v, maxTopN)
	}
	stats, err := s.collector.Fetcher().FetchTopSymbols(ctx, n)
	if err != nil {
		s.log.Error().Err(err).Msg("top command")
		return fmt.Sprintf("❌ 数据获取失败: %v", err)
	}
	return notifier.FormatTopSymbols(stats)
}

func cmdFib(args []string) string {
	if len(args) != 2 {
		return "用法: /fib START END"
	}
	start, err1 := strconv.ParseFloat(args[0], 64)
	end, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		return "用法: /fib START END"
	}
	return notifier.FormatFibonacci(start, end, calculator.CalculateFibonacciLevels(start, end))
}

func (s *Scheduler) trySend(text string) {
	if err := s.notifier.SendWithRetry(s.ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
