package email_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maileazy/mailhub/pkg/email"
)

func TestSendEmailParamsValidate(t *testing.T) {
	valid := email.SendEmailParams{
		SendTo:   "alice@example.com",
		Subject:  "Hello",
		BodyHTML: "<p>hi</p>",
	}
	assert.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*email.SendEmailParams){
		"missing recipient": func(p *email.SendEmailParams) { p.SendTo = "" },
		"bad recipient":     func(p *email.SendEmailParams) { p.SendTo = "not-an-email" },
		"missing subject":   func(p *email.SendEmailParams) { p.Subject = "" },
		"missing body":      func(p *email.SendEmailParams) { p.BodyHTML = "" },
	} {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
		})
	}
}

func TestWelcomeEmail(t *testing.T) {
	p := email.WelcomeEmail("Alice")
	assert.Contains(t, p.BodyHTML, "Alice")
	assert.Equal(t, "welcome", p.Tag)
	assert.NotEmpty(t, p.Subject)
}
