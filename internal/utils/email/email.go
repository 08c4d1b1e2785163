package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mkraev/finflow/internal/config"
	"github.com/mkraev/finflow/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendRiskAlert notifies an account owner about upcoming payments that
// are projected to push the balance below the safe minimum
func (s *Sender) SendRiskAlert(to, username string, accountName string, risks []models.PaymentRisk, currentBalance decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Payment risk alert for account %s", accountName)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", username)
	fmt.Fprintf(&b,
		"Your account %q (current balance %s) has %d upcoming payment(s) projected to fall below your minimum safe balance:\n\n",
		accountName, currentBalance.StringFixed(2), len(risks),
	)
	for _, risk := range risks {
		fmt.Fprintf(&b,
			"  - %s: projected balance %s, shortfall %s (severity: %s)\n",
			risk.Date.Format("2006-01-02"),
			risk.ProjectedBalance.StringFixed(2),
			risk.Shortfall.StringFixed(2),
			risk.Severity,
		)
	}
	b.WriteString("\nConsider moving funds or rescheduling these payments.\n")
	b.WriteString("\nBest regards,\nFinFlow")
	e.Text = []byte(b.String())

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
