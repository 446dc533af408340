package notifications

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

// DefaultSenderName is used for the email display name and the envelope header.
const DefaultSenderName = "StudentMS"

var envelopeTemplate = template.Must(template.New("email").Parse(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; color: #333; }
.container { max-width: 600px; margin: 0 auto; }
.header { background-color: #667eea; color: white; padding: 20px; text-align: center; }
.content { padding: 20px; background-color: #f9f9f9; }
.footer { background-color: #f0f0f0; padding: 10px; text-align: center; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h2>Notification from {{.Sender}}</h2></div>
<div class="content">{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div>
<div class="footer">
<p>&copy; {{.Year}} {{.Sender}} - Student Management System</p>
<p>Please do not reply to this email</p>
</div>
</div>
</body>
</html>`))

type envelopeData struct {
	Sender string
	Lines  []string
	Year   int
}

// RenderEmailBody wraps message in the HTML envelope used for every outgoing email.
// The message is escaped and its line breaks become <br> tags.
func RenderEmailBody(senderName, message string, now time.Time) (string, error) {
	if strings.TrimSpace(senderName) == "" {
		senderName = DefaultSenderName
	}
	normalized := strings.ReplaceAll(message, "\r\n", "\n")

	var buf bytes.Buffer
	if err := envelopeTemplate.Execute(&buf, envelopeData{
		Sender: senderName,
		Lines:  strings.Split(normalized, "\n"),
		Year:   now.Year(),
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
