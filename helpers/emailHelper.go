package helpers

import (
	"fmt"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

func smtpDialer() *gomail.Dialer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("SMTP_USERNAME"),
		os.Getenv("SMTP_PASSWORD"),
	)
}

func sendEmail(to, subject, body string) error {
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = "Tours <hello@tours.dev>"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return smtpDialer().DialAndSend(m)
}

func SendWelcomeEmail(to, name, url string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to the Tours family! Visit %s to upload a photo and get started.\n",
		name, url)
	return sendEmail(to, "Welcome to the Tours family!", body)
}

func SendPasswordResetEmail(to, resetURL string) error {
	body := fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to %s.\nIf you didn't forget your password, please ignore this email. The link is valid for 10 minutes.\n",
		resetURL)
	return sendEmail(to, "Your password reset token (valid for 10 minutes)", body)
}
