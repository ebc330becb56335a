package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/benoitkugler/equimark/internal/session"
)

// logoCID is the Content-ID the HTML body uses for the inline logo.
const logoCID = "logo_cid"

// SummaryInput carries everything the composer needs. The composer
// does no I/O: image bytes are handed in already encoded.
type SummaryInput struct {
	Record      session.Record
	Left, Right []byte // encoded annotated PNGs
	Logo        []byte // optional, inlined when present
	EmbedImages bool   // additionally inline both diagrams in the body
}

var htmlBody = template.Must(template.New("summary").Funcs(template.FuncMap{
	"nl2br": nl2br,
}).Parse(`{{if .HasLogo}}<img src="cid:logo_cid" alt="Logo" style="height:100px;"><br><br>
{{end}}<h2>🐴 Session Summary for {{.Horse}}</h2>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Amount:</strong> {{.Amount}} — {{.PaidStatus}}</p>
<p><strong>Notes:</strong></p>
<p>{{nl2br .Notes}}</p>
{{if .EmbedLeft}}<h3>🖼️ Inline Marked Diagrams</h3>
<p>
<img src="{{.EmbedLeft}}" alt="Left Side" style="border:1px solid #ccc;" width="300">
<img src="{{.EmbedRight}}" alt="Right Side" style="border:1px solid #ccc;" width="300">
</p>
{{end}}<h3>📎 Marked Areas of Concern</h3>
<p>The marked diagrams are attached as images of the left and right sides of the horse.</p>
`))

var textBody = texttemplate.Must(texttemplate.New("summary").Parse(`Session Summary for {{.Horse}}

Date: {{.Date}}
Amount: {{.Amount}} ({{.PaidText}})
Notes:
{{.Notes}}

The marked diagrams are attached as images of the left and right sides of the horse.
`))

type summaryData struct {
	Horse      string
	Date       string
	Amount     string
	PaidStatus string
	PaidText   string
	Notes      string
	HasLogo    bool
	EmbedLeft  template.URL
	EmbedRight template.URL
}

// nl2br escapes the notes and renders line breaks as <br> tags.
func nl2br(s string) template.HTML {
	esc := template.HTMLEscapeString(s)
	esc = strings.ReplaceAll(esc, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(esc, "\n", "<br>"))
}

// inlinePNG renders image bytes as a data: URI for embedding.
func inlinePNG(b []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(b))
}

// ComposeSummary builds the summary email for one session: same
// inputs, same output. The attachments are the two annotated diagrams,
// plus the logo inline when present.
func ComposeSummary(in SummaryInput) (Message, error) {
	rec := in.Record
	data := summaryData{
		Horse:      rec.Horse,
		Date:       rec.DateString(),
		Amount:     fmt.Sprintf("$%.2f", rec.Amount),
		PaidStatus: "❌ Not Paid",
		PaidText:   "not paid",
		Notes:      rec.Notes,
		HasLogo:    len(in.Logo) > 0,
	}
	if rec.Paid {
		data.PaidStatus = "✅ Paid"
		data.PaidText = "paid"
	}
	if in.EmbedImages {
		data.EmbedLeft = inlinePNG(in.Left)
		data.EmbedRight = inlinePNG(in.Right)
	}

	var html, text bytes.Buffer
	if err := htmlBody.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("compose summary: %w", err)
	}
	if err := textBody.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("compose summary: %w", err)
	}

	msg := Message{
		To:      rec.Email,
		Subject: fmt.Sprintf("Session Summary: %s (%s)", rec.Horse, rec.DateString()),
		HTML:    html.String(),
		Text:    text.String(),
		Attachments: []Attachment{
			{Filename: rec.Horse + "_left.png", Content: in.Left, MIMEType: "image/png"},
			{Filename: rec.Horse + "_right.png", Content: in.Right, MIMEType: "image/png"},
		},
	}
	if data.HasLogo {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename: "logo.png",
			Content:  in.Logo,
			MIMEType: "image/png",
			Inline:   true,
			CID:      logoCID,
		})
	}
	return msg, nil
}
