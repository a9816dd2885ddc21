package notify

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const portalName = "Student Achievement Portal"

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

// RenderMarkdown converts an announcement body to HTML. Raw HTML in the
// source is not passed through.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer().Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func layout(heading, body, portalURL string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="color: #333;">%s</h2>`, html.EscapeString(heading))
	b.WriteString(body)
	if portalURL != "" {
		fmt.Fprintf(&b, `<div style="text-align: center; margin: 30px 0;"><a href="%s" style="background-color: #667eea; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Open the portal</a></div>`,
			html.EscapeString(portalURL))
	}
	fmt.Fprintf(&b, `<p>Best regards,<br>%s Administration</p></div></body></html>`, portalName)
	return b.String()
}

func noteHTML(note string) string {
	if note == "" {
		return ""
	}
	return fmt.Sprintf("<p><strong>Admin note:</strong> %s</p>", html.EscapeString(note))
}

func noteText(note string) string {
	if note == "" {
		return ""
	}
	return "\nAdmin note: " + note + "\n"
}

// Approval tells a student their achievement was approved
func Approval(to Recipient, title string, points int, adminNote, portalURL string) Message {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Congratulations! Your certificate submission has been reviewed and <strong>approved</strong>.</p>
<p><strong>Title:</strong> %s<br><strong>Points awarded:</strong> %d</p>%s
<p>These points have been added to your total and are reflected on the leaderboard.</p>`,
		html.EscapeString(to.Name), html.EscapeString(title), points, noteHTML(adminNote))
	text := fmt.Sprintf("Dear %s,\n\nCongratulations! Your certificate submission has been approved.\n\nTitle: %s\nPoints awarded: %d\n%s\nThese points have been added to your total and are reflected on the leaderboard.\n",
		to.Name, title, points, noteText(adminNote))
	return Message{
		Kind:    KindApproval,
		To:      to,
		Subject: "Certificate Approved - " + portalName,
		Text:    text,
		HTML:    layout("Certificate approved", body, portalURL),
	}
}

// Rejection tells a student their achievement was not approved
func Rejection(to Recipient, title, adminNote, portalURL string) Message {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>We have reviewed your certificate submission. Unfortunately, we are unable to approve it at this time.</p>
<p><strong>Title:</strong> %s</p>%s
<p>You are welcome to submit again with clearer proof.</p>`,
		html.EscapeString(to.Name), html.EscapeString(title), noteHTML(adminNote))
	text := fmt.Sprintf("Dear %s,\n\nWe have reviewed your certificate submission. Unfortunately, we are unable to approve it at this time.\n\nTitle: %s\n%s\nYou are welcome to submit again with clearer proof.\n",
		to.Name, title, noteText(adminNote))
	return Message{
		Kind:    KindRejection,
		To:      to,
		Subject: "Certificate Review Update - " + portalName,
		Text:    text,
		HTML:    layout("Certificate review update", body, portalURL),
	}
}

// ERPDecision tells a student the outcome of their ERP verification
func ERPDecision(to Recipient, verified bool, points int, adminNote, portalURL string) Message {
	if verified {
		body := fmt.Sprintf(`<p>Dear %s,</p><p>Your ERP profile has been <strong>verified</strong> and %d points were awarded.</p>%s`,
			html.EscapeString(to.Name), points, noteHTML(adminNote))
		return Message{
			Kind:    KindApproval,
			To:      to,
			Subject: "ERP Profile Verified - " + portalName,
			Text:    fmt.Sprintf("Dear %s,\n\nYour ERP profile has been verified and %d points were awarded.\n%s", to.Name, points, noteText(adminNote)),
			HTML:    layout("ERP profile verified", body, portalURL),
		}
	}
	body := fmt.Sprintf(`<p>Dear %s,</p><p>Your ERP profile was not verified. Please review it and submit again.</p>%s`,
		html.EscapeString(to.Name), noteHTML(adminNote))
	return Message{
		Kind:    KindRejection,
		To:      to,
		Subject: "ERP Profile Review Update - " + portalName,
		Text:    fmt.Sprintf("Dear %s,\n\nYour ERP profile was not verified. Please review it and submit again.\n%s", to.Name, noteText(adminNote)),
		HTML:    layout("ERP profile review update", body, portalURL),
	}
}

func typeLabel(t models.AnnouncementType) string {
	if t == models.AnnouncementCareer {
		return "Career Opportunity"
	}
	return "Academic Announcement"
}

// Announcement renders a new announcement for one recipient. The
// description is treated as Markdown.
func Announcement(to Recipient, a *models.Announcement, portalURL string) (Message, error) {
	desc, err := RenderMarkdown(a.Description)
	if err != nil {
		return Message{}, fmt.Errorf("render announcement description: %w", err)
	}

	var details strings.Builder
	var textDetails strings.Builder
	detail := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&details, "<li><strong>%s:</strong> %s</li>", label, html.EscapeString(value))
		fmt.Fprintf(&textDetails, "%s: %s\n", label, value)
	}
	if a.Type == models.AnnouncementCareer {
		detail("Company", a.Company)
		detail("Location", a.Location)
		detail("Package", a.Package)
		detail("Eligibility", a.EligibilityCriteria)
		if a.Deadline != nil {
			detail("Deadline", a.Deadline.Format("January 2, 2006"))
		}
		detail("Apply", a.ApplyLink)
	} else {
		if a.EventDate != nil {
			detail("Date", a.EventDate.Format("January 2, 2006"))
		}
		detail("Venue", a.Venue)
	}

	body := fmt.Sprintf(`<p>Dear %s,</p><h3>%s</h3><div>%s</div>`,
		html.EscapeString(to.Name), html.EscapeString(a.Title), desc)
	if details.Len() > 0 {
		body += "<ul>" + details.String() + "</ul>"
	}
	if a.PostedByName != "" {
		body += fmt.Sprintf("<p>Posted by %s</p>", html.EscapeString(a.PostedByName))
	}

	label := typeLabel(a.Type)
	return Message{
		Kind:    KindAnnouncement,
		To:      to,
		Subject: fmt.Sprintf("%s: %s - %s", label, a.Title, portalName),
		Text:    fmt.Sprintf("Dear %s,\n\n%s\n\n%s\n\n%s", to.Name, a.Title, a.Description, textDetails.String()),
		HTML:    layout(label, body, portalURL),
	}, nil
}
