package notifier

import (
	"strings"
	"testing"

	"github.com/gamearena/arena-server/internal/matchmaking"
	"github.com/gamearena/arena-server/internal/model"
)

func TestPairedMessageCarriesRoomCredentials(t *testing.T) {
	roomID, secret := "ROOM_AB12CD34", "deadbeef0123"
	tk := &model.MatchTicket{
		ID:         7,
		MatchSize:  model.Size2v2,
		Status:     model.TicketPaired,
		RoomID:     &roomID,
		RoomSecret: &secret,
	}
	title, message := composeMessage(matchmaking.OutcomePaired, tk)
	if title == "" {
		t.Fatalf("paired title must not be empty")
	}
	if !strings.Contains(message, roomID) || !strings.Contains(message, secret) {
		t.Fatalf("paired message must carry room credentials, got %q", message)
	}
	if !strings.Contains(message, "2v2") {
		t.Fatalf("paired message must name the match size, got %q", message)
	}
}

func TestExpiredMessageHasNoCredentials(t *testing.T) {
	tk := &model.MatchTicket{
		ID:        9,
		MatchSize: model.Size1v1,
		Status:    model.TicketExpired,
	}
	_, message := composeMessage(matchmaking.OutcomeExpired, tk)
	if strings.Contains(message, "ROOM_") {
		t.Fatalf("expired message must not mention a room, got %q", message)
	}
	if !strings.Contains(message, "1v1") {
		t.Fatalf("expired message must name the match size, got %q", message)
	}
}
