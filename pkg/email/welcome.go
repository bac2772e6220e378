package email

import "fmt"

// WelcomeEmail builds the notice sent right after registration.
func WelcomeEmail(name string) SendEmailParams {
	return SendEmailParams{
		Subject: "Welcome to MailHub",
		Tag:     "welcome",
		BodyHTML: fmt.Sprintf(
			`<h2>Welcome, %s!</h2>`+
				`<p>Your account is ready. Connect your Gmail account and start sending campaigns.</p>`+
				`<p>You are on the free welcome plan; upgrade any time from your account page.</p>`,
			name),
	}
}

// PlanChangedEmail builds the notice sent after a successful plan change.
func PlanChangedEmail(name, planName string) SendEmailParams {
	return SendEmailParams{
		Subject: "Your MailHub plan has changed",
		Tag:     "plan-changed",
		BodyHTML: fmt.Sprintf(
			`<h2>Hi %s,</h2>`+
				`<p>Your subscription is now on the <strong>%s</strong> plan. `+
				`Your usage counters have been reset for the new billing cycle.</p>`,
			name, planName),
	}
}
