// Package notifier delivers V/S match outcomes to players: an in-app
// notification row with the room credentials (or the timeout notice),
// plus a match.resolved event on the broker for downstream consumers.
package notifier

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gamearena/arena-server/internal/matchmaking"
	"github.com/gamearena/arena-server/internal/model"
	"github.com/gamearena/arena-server/internal/queue"
	"github.com/gamearena/arena-server/internal/repository"
	publisher "github.com/gamearena/arena-server/internal/service"
)

// Notifier implements matchmaking.Notifier.  Delivery is fire and
// forget: failures are logged, never surfaced, and never block or
// roll back the pairing that triggered them.
type Notifier struct {
	notifications *repository.NotificationRepo
	publish       bool // false when no broker is configured
}

// New returns a Notifier writing to the given repo.  publish controls
// whether match.resolved events are also sent to RabbitMQ.
func New(repo *repository.NotificationRepo, publish bool) *Notifier {
	return &Notifier{notifications: repo, publish: publish}
}

// Notify records the ticket's outcome for its owner.
func (n *Notifier) Notify(ctx context.Context, userID uint64, outcome matchmaking.Outcome, t *model.MatchTicket) {
	title, message := composeMessage(outcome, t)
	if err := n.notifications.Create(ctx, userID, title, message, model.NotifyMatch); err != nil {
		log.Printf("notifier: writing notification for user %d failed: %v", userID, err)
	}

	if !n.publish {
		return
	}
	ev := queue.MatchResolvedEvent{
		TicketID:         t.ID,
		UserID:           userID,
		MatchSize:        string(t.MatchSize),
		Outcome:          string(outcome),
		OpponentTicketID: t.OpponentTicketID,
		RoomID:           t.RoomID,
		ResolvedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	// Publisher logs its own failures; nothing to do with the error here.
	_ = publisher.PublishMatchResolved(ctx, ev)
}

func composeMessage(outcome matchmaking.Outcome, t *model.MatchTicket) (title, message string) {
	switch outcome {
	case matchmaking.OutcomePaired:
		roomID, secret := "", ""
		if t.RoomID != nil {
			roomID = *t.RoomID
		}
		if t.RoomSecret != nil {
			secret = *t.RoomSecret
		}
		return "Opponent found!",
			fmt.Sprintf("Your %s match is ready. Room %s, secret %s.", t.MatchSize, roomID, secret)
	case matchmaking.OutcomeExpired:
		return "No opponent found",
			fmt.Sprintf("No %s opponent showed up in time. Try again!", t.MatchSize)
	}
	return "Match update", fmt.Sprintf("Your %s ticket was updated.", t.MatchSize)
}
