// services/notifier.go
package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"

	"kennel-backend/utils"
)

// OfferNotification is everything a channel needs to tell an owner about a
// held slot. Content beyond this is the channel's problem.
type OfferNotification struct {
	OwnerName    string
	Destination  string
	Method       string // "email" | "sms"
	ServiceType  string
	LocationName string
	StartDate    string
	EndDate      string
	ConfirmLink  string
	HoldMinutes  int
}

// Notifier dispatches offer notifications. Dispatch is best-effort: the
// token is the source of truth, so a failed send never rolls an offer back.
type Notifier interface {
	NotifyOffer(n OfferNotification) error
}

// LogNotifier just logs; used in tests and when no SMTP is configured
// for the sms method.
type LogNotifier struct{}

func (LogNotifier) NotifyOffer(n OfferNotification) error {
	log.Printf("[MOCK NOTIFY] method:%s to:%s service:%s span:%s..%s link:%s hold:%dmin",
		n.Method, utils.MaskEmail(n.Destination), n.ServiceType, n.StartDate, n.EndDate, n.ConfirmLink, n.HoldMinutes)
	return nil
}

// SMTPNotifier sends the offer email. Falls back to a mock log when SMTP
// env vars are absent (dev setup).
type SMTPNotifier struct{}

func (SMTPNotifier) NotifyOffer(n OfferNotification) error {
	if !strings.EqualFold(n.Method, "email") {
		// Non-email methods go out through the messaging collaborator;
		// this process only records the dispatch.
		log.Printf("[NOTIFY:%s] to:%s link:%s", n.Method, n.Destination, n.ConfirmLink)
		return nil
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := os.Getenv("SMTP_FROM_NAME")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		log.Printf("[MOCK EMAIL] offer to:%s service:%s span:%s..%s link:%s",
			utils.MaskEmail(n.Destination), n.ServiceType, n.StartDate, n.EndDate, n.ConfirmLink)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}

	ownerName := safe(n.OwnerName)
	serviceType := safe(n.ServiceType)
	locationName := safe(n.LocationName)
	confirmLink := safe(n.ConfirmLink)

	if !(strings.HasPrefix(confirmLink, "http://") || strings.HasPrefix(confirmLink, "https://")) {
		confirmLink = "https://" + strings.TrimLeft(confirmLink, "/")
	}

	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	to := []string{n.Destination}
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	subject := fmt.Sprintf("A %s spot opened up, please confirm within %d minutes", serviceType, n.HoldMinutes)
	boundary := "----=_OFFER_EMAIL_BOUNDARY"

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"A %s spot at %s opened up for %s to %s and is being held for you.\n"+
			"Confirm within %d minutes using the link below, or the hold is released:\n%s\n\n"+
			"If you no longer need this booking, you can ignore this email.\n",
		ownerName, serviceType, locationName, n.StartDate, n.EndDate, n.HoldMinutes, confirmLink,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Spot available</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.btn { display:inline-block; padding:12px 20px; background:#0b74ff; color:#fff; text-decoration:none; border-radius:6px; margin-top:16px; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>A spot opened up</h2>
    <p>Hi %s,</p>
    <p>A <strong>%s</strong> spot at %s is being held for you for <strong>%s to %s</strong>.</p>
    <p>Please confirm within %d minutes, or the hold will be released.</p>
    <a class="btn" href="%s" target="_blank">Confirm my booking</a>
    <p>If you no longer need this booking, you can ignore this email.</p>
  </div>
</div>
</body>
</html>`,
		ownerName, serviceType, locationName, n.StartDate, n.EndDate, n.HoldMinutes, confirmLink,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", n.Destination))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, smtpUser, to, []byte(sb.String())); err != nil {
		log.Printf("Failed to send offer email to %s: %v", utils.MaskEmail(n.Destination), err)
		return err
	}

	log.Printf("Offer email sent to %s", utils.MaskEmail(n.Destination))
	return nil
}
