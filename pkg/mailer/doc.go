// Package mailer sends campaign emails through the user's own Gmail
// account. Each user authorizes the app once; the resulting OAuth token is
// kept in the TokenStore and selects the per-user sending channel.
package mailer
