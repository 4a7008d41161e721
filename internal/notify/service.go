package notify

import (
	"context"
	"fmt"

	"github.com/puntaluxe/growth-engine/pkg/logging"
)

// QualificationNotifier emails the agency inbox when a prospect is
// approved into the outreach pipeline.
type QualificationNotifier struct {
	sender       Sender
	to           string
	dashboardURL string
	logger       *logging.Logger
}

func NewQualificationNotifier(sender Sender, to, dashboardURL string, logger *logging.Logger) *QualificationNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &QualificationNotifier{
		sender:       sender,
		to:           to,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

// ProspectQualified sends the qualification alert. Failures are returned
// so the caller can log them, but the triage flow treats them as
// best-effort.
func (n *QualificationNotifier) ProspectQualified(ctx context.Context, leadID string) error {
	if n.sender == nil || n.to == "" {
		return nil
	}

	msg := EmailMessage{
		To:      n.to,
		Subject: "Nuevo prospecto calificado",
		Body: fmt.Sprintf(
			"Un prospecto fue aprobado y entró a la secuencia de outreach.\n\nLead: %s\nPanel: %s/partners/dashboard/sniper\n",
			leadID, n.dashboardURL),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: qualification alert: %w", err)
	}
	n.logger.Debug("qualification alert sent", "lead_id", leadID)
	return nil
}
