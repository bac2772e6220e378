// Package mailformat manages reusable mail templates (name, subject,
// body) per user.
package mailformat
