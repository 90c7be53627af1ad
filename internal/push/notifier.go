package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/evertsen/kidschores/internal/model"
	"github.com/evertsen/kidschores/internal/store"
)

// Notifier fans approval requests out to every registered push subscription.
type Notifier struct {
	service *Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(svc *Service, subs *store.PushStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		service: svc,
		subs:    subs,
		logger:  logger.With("component", "push"),
	}
}

// TaskAwaitingApproval notifies parents that a task needs review. Expired
// subscriptions are pruned as they are discovered.
func (n *Notifier) TaskAwaitingApproval(task *model.Task, child *model.Child) {
	subs, err := n.subs.List()
	if err != nil {
		n.logger.Error("list subscriptions", "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	body := fmt.Sprintf("%q is waiting for approval", task.Title)
	if child != nil {
		body = fmt.Sprintf("%s finished %q and is waiting for approval", child.Name, task.Title)
	}

	payload := Payload{
		Title: "Task Ready for Review",
		Body:  body,
		URL:   "/tasks",
		Tag:   fmt.Sprintf("task-approval-%s", task.ID),
	}

	for _, sub := range subs {
		if err := n.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if derr := n.subs.DeleteByEndpoint(sub.Endpoint); derr != nil {
					n.logger.Error("prune expired subscription", "error", derr)
				}
				continue
			}
			n.logger.Error("send approval notification", "task_id", task.ID, "error", err)
		}
	}
}
