package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"SVMonit/internal/calculator"
	"SVMonit/internal/metrics"
	"SVMonit/internal/model"
	"SVMonit/internal/notifier"
	"SVMonit/internal/pipeline"
	"SVMonit/internal/series"
)

// Sender delivers a report.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the periodic report and answers chat commands.
type Scheduler struct {
	Cron            *cron.Cron
	Coordinator     *pipeline.Coordinator
	Notifier        Sender
	Logger          *logrus.Logger
	Metrics         *metrics.Metrics
	DefaultInterval string
	Source          string
	StartedAt       time.Time
	Ctx             context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, coord *pipeline.Coordinator, sender Sender, defaultInterval, source string, logger *logrus.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:            cron.New(cron.WithSeconds()),
		Coordinator:     coord,
		Notifier:        sender,
		Logger:          logger,
		Metrics:         m,
		DefaultInterval: defaultInterval,
		Source:          source,
		StartedAt:       time.Now(),
		Ctx:             ctx,
	}
}

// RegisterAll registers the scheduled report.
func (s *Scheduler) RegisterAll(reportCron string) error {
	if _, err := series.ParseInterval(s.DefaultInterval); err != nil {
		return fmt.Errorf("default interval: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunReportNow executes the report task immediately.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	s.Logger.WithField("interval", s.DefaultInterval).Info("running scheduled report")
	report, err := s.BuildReport(s.DefaultInterval)
	if err != nil {
		s.Logger.WithError(err).Error("scheduled report failed")
		s.trySend(notifier.FormatFailure("Report failed", err))
		return
	}
	if s.trySend(report) {
		s.Metrics.ObserveReport()
	}
}

// BuildReport runs a selection for token and renders it. When the forecast
// cannot be fitted the window summary is still reported.
func (s *Scheduler) BuildReport(token string) (string, error) {
	sel, err := s.Coordinator.OnSelection(token)
	if err != nil {
		if !errors.Is(err, model.ErrModelFit) {
			return "", err
		}
		view, selErr := series.Select(s.Coordinator.Store(), token)
		if selErr != nil {
			return "", selErr
		}
		summary, sumErr := calculator.Summarize(view, s.Logger)
		if sumErr != nil {
			return "", sumErr
		}
		iv, _ := series.ParseInterval(token)
		s.Logger.WithError(err).WithField("interval", token).Warn("reporting without forecast")
		return notifier.FormatDegradedReport(iv, summary, err), nil
	}

	summary, err := calculator.Summarize(sel.View, s.Logger)
	if err != nil {
		return "", err
	}
	return notifier.FormatSelectionReport(sel.Interval, summary, sel.Forecast), nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	cmd := strings.TrimPrefix(strings.TrimSpace(command), "/")
	// Group chats address commands as /7d@botname.
	cmd, _, _ = strings.Cut(cmd, "@")
	cmd = strings.ToLower(cmd)

	switch cmd {
	case "help", "start":
		return notifier.FormatHelp(s.DefaultInterval)
	case "status":
		return s.status()
	}

	report, err := s.BuildReport(cmd)
	if err != nil {
		if errors.Is(err, model.ErrUnknownInterval) {
			return notifier.FormatUnknownCommand(command, s.DefaultInterval)
		}
		s.Logger.WithError(err).WithField("command", command).Error("command failed")
		return notifier.FormatFailure("", err)
	}
	return report
}

func (s *Scheduler) status() string {
	store := s.Coordinator.Store()
	return notifier.FormatStatus(notifier.Status{
		Source:    s.Source,
		Points:    store.Len(),
		From:      store.First(),
		To:        store.Last(),
		Series:    store.Names(),
		Steps:     s.Coordinator.Steps(),
		StartedAt: s.StartedAt,
	})
}

func (s *Scheduler) trySend(text string) bool {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.WithError(err).Error("send notification failed")
		return false
	}
	return true
}
