package mailer

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const mimeBoundary = "__mailhub_boundary__"

// buildMIME renders the message as an RFC 2822 multipart/mixed payload:
// an HTML part followed by an optional base64 attachment part.
func buildMIME(msg Message) []byte {
	var b strings.Builder

	writeLine := func(lines ...string) {
		for _, l := range lines {
			b.WriteString(l)
			b.WriteString("\r\n")
		}
	}

	writeLine(
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", mimeBoundary),
		"",
		"--"+mimeBoundary,
		`Content-Type: text/html; charset="UTF-8"`,
		"Content-Transfer-Encoding: 7bit",
		"",
		msg.HTMLBody,
		"",
	)

	if att := msg.Attachment; att != nil {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		writeLine(
			"--"+mimeBoundary,
			fmt.Sprintf("Content-Type: %s; name=%q", contentType, att.Filename),
			fmt.Sprintf("Content-Disposition: attachment; filename=%q", att.Filename),
			"Content-Transfer-Encoding: base64",
			"",
			base64.StdEncoding.EncodeToString(att.Data),
		)
	}

	writeLine("--" + mimeBoundary + "--")
	return []byte(b.String())
}
