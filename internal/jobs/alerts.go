package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mkraev/finflow/internal/forecast"
	"github.com/mkraev/finflow/internal/models"
	"github.com/mkraev/finflow/internal/repository"
	"github.com/mkraev/finflow/internal/utils/email"
)

// alertHorizonDays is how far ahead the sweep looks for risks.
const alertHorizonDays = 30

// sweepTimeout bounds one full pass over all accounts.
const sweepTimeout = 10 * time.Minute

// RiskNotifier periodically recomputes forecasts for every configured
// account and emails workspace owners about urgent payment risks. It
// goes through the forecast service, so accounts with a fresh cache
// entry cost nothing to check.
type RiskNotifier struct {
	repo      *repository.Repository
	forecasts *forecast.Service
	mailer    *email.Sender
	log       *logrus.Logger
	cron      *cron.Cron
}

// NewRiskNotifier initializes the daily risk sweep.
func NewRiskNotifier(repo *repository.Repository, forecasts *forecast.Service, mailer *email.Sender, log *logrus.Logger) *RiskNotifier {
	return &RiskNotifier{repo: repo, forecasts: forecasts, mailer: mailer, log: log}
}

// Start schedules the sweep with the given cron spec.
func (n *RiskNotifier) Start(schedule string) error {
	n.cron = cron.New()
	if _, err := n.cron.AddFunc(schedule, n.Sweep); err != nil {
		return err
	}
	n.cron.Start()
	n.log.Infof("Risk alert sweep scheduled: %s", schedule)
	return nil
}

// Stop halts the scheduler; a running sweep finishes on its own.
func (n *RiskNotifier) Stop() {
	if n.cron != nil {
		n.cron.Stop()
	}
}

// Sweep runs one pass over all alert-enabled accounts. Failures on
// individual accounts are logged and skipped so one broken account
// cannot block alerts for the rest.
func (n *RiskNotifier) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	accounts, err := n.repo.ListAlertAccounts(ctx)
	if err != nil {
		n.log.Errorf("Risk sweep failed to list accounts: %v", err)
		return
	}

	today := forecast.DateOnly(time.Now())
	opts := forecast.Options{
		StartDate: today,
		EndDate:   today.AddDate(0, 0, alertHorizonDays-1),
	}

	notified := 0
	for _, acc := range accounts {
		fc, err := n.forecasts.GetForecast(ctx, acc.WorkspaceID, acc.AccountID, opts)
		if err != nil {
			n.log.Warnf("Risk sweep skipped account %d: %v", acc.AccountID, err)
			continue
		}

		urgent := urgentRisks(fc.Risks)
		if len(urgent) == 0 {
			continue
		}
		if err := n.mailer.SendRiskAlert(acc.Email, acc.Username, acc.AccountName, urgent, fc.CurrentBalance); err != nil {
			n.log.Warnf("Risk sweep failed to notify %s: %v", acc.Email, err)
			continue
		}
		notified++
	}

	n.log.Infof("Risk sweep finished: %d accounts checked, %d owners notified", len(accounts), notified)
}

func urgentRisks(risks []models.PaymentRisk) []models.PaymentRisk {
	var urgent []models.PaymentRisk
	for _, r := range risks {
		if r.Severity == models.SeverityHigh || r.Severity == models.SeverityCritical {
			urgent = append(urgent, r)
		}
	}
	return urgent
}
