package event

import (
	"context"
	"fmt"
	"log/slog"

	"teamspace/contract"
)

// NotificationHandler emails the assignee of a task.
// Delivery is not idempotent, a failure is reported to the bus and never retried.
type NotificationHandler struct {
	log    *slog.Logger
	mailer contract.Mailer
	from   string
}

func NewNotificationHandler(log *slog.Logger, mailer contract.Mailer, from string) *NotificationHandler {
	return &NotificationHandler{log: log, mailer: mailer, from: from}
}

func (h *NotificationHandler) OnTaskAssigned(ctx context.Context, e TaskAssigned) error {
	if e.AssigneeEmail == "" {
		h.log.Debug("No email for assignee, notification skipped", "task_id", e.TaskID, "assignee", e.AssigneeID)
		return nil
	}
	mail := contract.Mail{
		From:    h.from,
		To:      e.AssigneeEmail,
		Subject: fmt.Sprintf("You have been assigned %q", e.Title),
		Body: fmt.Sprintf("%s assigned you the task %q on board %d at %s.",
			e.UserID, e.Title, e.BoardID, e.At.Format("2006-01-02 15:04 MST")),
	}
	if err := h.mailer.Send(ctx, mail); err != nil {
		return fmt.Errorf("notify %s: %w", e.AssigneeEmail, err)
	}
	return nil
}
