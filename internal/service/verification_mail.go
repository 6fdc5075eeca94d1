package service

import (
	"fmt"
	"html"
)

func verificationMail(sendTo, name, link string) *EmailMessage {
	return &EmailMessage{
		To:      sendTo,
		Subject: "Verify your email address",
		TextBody: fmt.Sprintf("Hi %s,\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nIf you did not create an account, no further action is required.",
			name, link),
		HTMLBody: fmt.Sprintf("<p>Hi %s,</p><p>Click <a href='%s'>here</a> to verify your email address.</p><p>If you did not create an account, no further action is required.</p>",
			html.EscapeString(name), html.EscapeString(link)),
	}
}

func resetMail(sendTo, link string, ttlMinutes int) *EmailMessage {
	return &EmailMessage{
		To:      sendTo,
		Subject: "Reset Password Notification",
		TextBody: fmt.Sprintf("You are receiving this email because we received a password reset request for your account.\n\n%s\n\nThis password reset link will expire in %d minutes.\n\nIf you did not request a password reset, no further action is required.",
			link, ttlMinutes),
		HTMLBody: fmt.Sprintf("<p>You are receiving this email because we received a password reset request for your account.</p><p><a href='%s'>Reset Password</a></p><p>This password reset link will expire in %d minutes.</p><p>If you did not request a password reset, no further action is required.</p>",
			html.EscapeString(link), ttlMinutes),
	}
}
