package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"travelorders/internal/domain/models"
	"travelorders/internal/notify"
)

func sampleEvent(kind notify.Kind) notify.Event {
	return notify.Event{
		Kind: kind,
		Order: models.TravelOrder{
			ID:            7,
			City:          "Belo Horizonte",
			State:         "Minas Gerais",
			Country:       "Brasil",
			DepartureDate: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			ReturnDate:    time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC),
			Status:        models.StatusApproved,
		},
		User: models.UserProfile{ID: 1, Name: "Alice", Email: "alice@example.com"},
	}
}

func TestComposeApproved(t *testing.T) {
	subject, body := Compose(sampleEvent(notify.KindApproved))
	if subject != "Update on your travel order" {
		t.Fatalf("subject = %q", subject)
	}
	for _, want := range []string{
		"Hello Alice, we have great news",
		"Belo Horizonte - Minas Gerais, Brasil has been approved",
		"Departing on: 20/03/2026",
		"Returning on: 25/03/2026",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestComposeDisapproved(t *testing.T) {
	_, body := Compose(sampleEvent(notify.KindDisapproved))
	if !strings.Contains(body, "has been cancelled") {
		t.Fatalf("body should mention cancellation:\n%s", body)
	}
	if strings.Contains(body, "great news") {
		t.Fatalf("cancellation body reused the approval greeting:\n%s", body)
	}
}

func TestSendAssessmentWithoutHostLogsOnly(t *testing.T) {
	s := &Sender{Log: zap.NewNop()}
	if err := s.SendAssessment(context.Background(), sampleEvent(notify.KindApproved)); err != nil {
		t.Fatalf("expected the no-host path to succeed, got %v", err)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("noreply@example.com", "alice@example.com", "Subject line", "Body"))
	for _, want := range []string{
		"From: noreply@example.com\r\n",
		"To: alice@example.com\r\n",
		"Subject: Subject line\r\n",
		"\r\n\r\nBody",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
