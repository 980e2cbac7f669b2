package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"

	"civic-issue-tracker/models"
)

// EmailNotifier sends status-change and comment emails over SMTP. Every
// send runs in its own goroutine and a failure is logged, never propagated:
// notification is a side channel, not part of the operation.
type EmailNotifier struct{}

func (EmailNotifier) StatusChanged(to models.User, issueTitle string, oldStatus, newStatus models.IssueStatus) {
	subject := fmt.Sprintf("Issue Status Updated - %s", issueTitle)
	body := fmt.Sprintf(`Hello %s,

The status of your issue "%s" has been updated.

Previous Status: %s
New Status: %s

Thank you for using Civic Issue Tracker!

This is an automated message. Please do not reply to this email.
`, to.Name, issueTitle, oldStatus, newStatus)

	go send(to.Email, subject, body)
}

func (EmailNotifier) NewComment(to models.User, issueTitle, commenterName string) {
	subject := fmt.Sprintf("New Comment on Your Issue - %s", issueTitle)
	body := fmt.Sprintf(`Hello %s,

%s has commented on your issue "%s".

Login to the Civic Issue Tracker to view the comment and respond.

This is an automated message. Please do not reply to this email.
`, to.Name, commenterName, issueTitle)

	go send(to.Email, subject, body)
}

func send(toEmail, subject, body string) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return // email not configured
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("EMAIL_FROM")
	pass := os.Getenv("EMAIL_PASSWORD")

	msg := fmt.Sprintf("Subject: %s\r\n\r\n%s", subject, body)

	err := smtp.SendMail(
		host+":"+port,
		smtp.PlainAuth("", from, pass, host),
		from,
		[]string{toEmail},
		[]byte(msg),
	)
	if err != nil {
		log.Println("Error sending email:", err)
		return
	}
	log.Println("Notification email sent to", toEmail)
}
