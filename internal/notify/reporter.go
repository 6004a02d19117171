package notify

import (
	"context"
	"fmt"
)

// Reporter emails rendered performance reports.
type Reporter struct {
	sender EmailSender
}

// NewReporter creates a Reporter delivering through the given sender.
func NewReporter(sender EmailSender) *Reporter {
	return &Reporter{sender: sender}
}

// SendPerformanceReport renders the analysis as HTML and emails it.
func (r *Reporter) SendPerformanceReport(ctx context.Context, to string, data ReportData) error {
	if to == "" {
		return fmt.Errorf("report recipient is required")
	}
	html, err := BuildPerformanceReport(data)
	if err != nil {
		return err
	}
	return r.sender.Send(ctx, EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Tu informe de rendimiento · %s", data.Period.Label()),
		HTML:    html,
	})
}
