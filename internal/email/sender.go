package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"travelorders/internal/notify"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Sender delivers assessment notifications over SMTP. With no host
// configured it degrades to logging the composed message, so the worker
// stays runnable in development.
type Sender struct {
	Cfg Config
	Log *zap.Logger
}

func (s *Sender) SendAssessment(ctx context.Context, ev notify.Event) error {
	subject, body := Compose(ev)

	if s.Cfg.Host == "" {
		s.Log.Info("smtp disabled, logging notification instead",
			zap.String("to", ev.User.Email),
			zap.String("subject", subject),
		)
		return nil
	}

	msg := buildMessage(s.Cfg.From, ev.User.Email, subject, body)
	addr := s.Cfg.Host + ":" + s.Cfg.Port

	var auth smtp.Auth
	if s.Cfg.Username != "" {
		auth = smtp.PlainAuth("", s.Cfg.Username, s.Cfg.Password, s.Cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.Cfg.From, []string{ev.User.Email}, msg)
}

// Compose renders the subject and body for an assessment event.
func Compose(ev notify.Event) (subject, body string) {
	subject = "Update on your travel order"

	var b strings.Builder
	switch ev.Kind {
	case notify.KindApproved:
		fmt.Fprintf(&b, "Hello %s, we have great news for you!\n\n", ev.User.Name)
		fmt.Fprintf(&b, "Your travel order to %s - %s, %s has been approved.\n",
			ev.Order.City, ev.Order.State, ev.Order.Country)
	default:
		fmt.Fprintf(&b, "Hello %s,\n\n", ev.User.Name)
		fmt.Fprintf(&b, "Your travel order to %s - %s, %s has been cancelled.\n",
			ev.Order.City, ev.Order.State, ev.Order.Country)
	}
	fmt.Fprintf(&b, "Departing on: %s\n", ev.Order.DepartureDate.Format("02/01/2006"))
	fmt.Fprintf(&b, "Returning on: %s\n", ev.Order.ReturnDate.Format("02/01/2006"))
	return subject, b.String()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
