package service

import (
	"fmt"
	"time"
)

func passwordResetOTPTemplate(code string, expiry time.Duration, appName string) (subject, body string) {
	subject = fmt.Sprintf("Password Reset Code - %s", appName)
	body = fmt.Sprintf(`Hello!

You are receiving this email because we received a password reset request for your account.

Your password reset code is:

%s

This code will expire in %d minutes.

If you did not request a password reset, no further action is required.

The %s Team`, code, int(expiry.Minutes()), appName)
	return subject, body
}

func verificationTemplate(name, verifyURL, appName string) (subject, body string) {
	subject = fmt.Sprintf("Verify Your Email Address - %s", appName)
	body = fmt.Sprintf(`Hi %s,

Please click the link below to verify your email address:

%s

If you did not create an account, no further action is required.

The %s Team`, name, verifyURL, appName)
	return subject, body
}

func welcomeTemplate(name, appName string) (subject, body string) {
	subject = fmt.Sprintf("Welcome to %s", appName)
	body = fmt.Sprintf(`Hi %s,

Your account is ready. Connect your GitHub, Spotify and LinkedIn accounts to start building your wrapped story.

The %s Team`, name, appName)
	return subject, body
}
