package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"sync"
)

// Notification dispatch is a one-way, fire-and-forget side channel:
// Dispatch never returns an error, never blocks the caller on the
// delivery round trip, and the triggering mutation never rolls back
// because an email could not be delivered. Every user-supplied field
// is interpolated through html/template, so the rendered bodies are
// HTML-escaped.

var dispatchWG sync.WaitGroup

// Dispatch hands the email to the sender on a goroutine, logging (not
// surfacing) failures. The email is copied before hand-off so the
// caller cannot race the send.
func Dispatch(email *Email) {
	if email == nil {
		return
	}
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	dispatchWG.Add(1)
	go func(email *Email) {
		defer dispatchWG.Done()
		if Mail == nil {
			log.Printf("[WARNING] Email sender not initialized, dropping notification %q", email.Subject)
			return
		}
		if err := Mail.Send(email); err != nil {
			log.Printf("[WARNING] Failed to send notification %q: %v", email.Subject, err)
		}
	}(emailCopy)
}

// WaitForDispatch blocks until every in-flight notification send has
// finished.
func WaitForDispatch() {
	dispatchWG.Wait()
}

func renderTemplate(tmpl *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("[WARNING] Failed to render email template %s: %v", tmpl.Name(), err)
		return ""
	}
	return buf.String()
}

var managerAssignedTmpl = template.Must(template.New("manager_assigned").Parse(`
<p>Hi {{.ManagerName}},</p>
<p>You have been assigned as case manager for <strong>{{.CaseTitle}}</strong> ({{.CaseNumber}}).</p>
<p>Log in to the portal to review the case details.</p>`))

// ManagerAssignedEmailData contains data for the manager assignment email
type ManagerAssignedEmailData struct {
	ManagerName string
	CaseTitle   string
	CaseNumber  string
}

// BuildManagerAssignedEmail notifies a staff/admin member they now manage a case
func BuildManagerAssignedEmail(managerEmail string, data ManagerAssignedEmailData) *Email {
	return &Email{
		To:       []string{managerEmail},
		Subject:  fmt.Sprintf("You are now managing case %s", data.CaseNumber),
		HTMLBody: renderTemplate(managerAssignedTmpl, data),
	}
}

var expertAssignedTmpl = template.Must(template.New("expert_assigned").Parse(`
<p>Hi {{.ExpertName}},</p>
<p>You have been selected as the expert for <strong>{{.CaseTitle}}</strong> ({{.CaseNumber}}).</p>
<p>The case team will be in touch with next steps. You can review the case in your portal.</p>`))

// ExpertAssignedEmailData contains data for the expert assignment email
type ExpertAssignedEmailData struct {
	ExpertName string
	CaseTitle  string
	CaseNumber string
}

// BuildExpertAssignedEmail notifies an expert they were assigned to a case
func BuildExpertAssignedEmail(expertEmail string, data ExpertAssignedEmailData) *Email {
	return &Email{
		To:       []string{expertEmail},
		Subject:  fmt.Sprintf("You have been assigned to %s", data.CaseTitle),
		HTMLBody: renderTemplate(expertAssignedTmpl, data),
	}
}

var expertInvitedTmpl = template.Must(template.New("expert_invited").Parse(`
<p>Hi {{.ExpertName}},</p>
<p>You have been invited to consider a new matter: <strong>{{.CaseTitle}}</strong> ({{.CaseNumber}}).</p>
<p>Please log in to the portal to accept, decline, or request more information.</p>`))

// ExpertInvitedEmailData contains data for the case invitation email
type ExpertInvitedEmailData struct {
	ExpertName string
	CaseTitle  string
	CaseNumber string
}

// BuildExpertInvitedEmail notifies an expert they were invited to a case
func BuildExpertInvitedEmail(expertEmail string, data ExpertInvitedEmailData) *Email {
	return &Email{
		To:       []string{expertEmail},
		Subject:  fmt.Sprintf("Invitation to consult on %s", data.CaseTitle),
		HTMLBody: renderTemplate(expertInvitedTmpl, data),
	}
}

var invitationResponseTmpl = template.Must(template.New("invitation_response").Parse(`
<p>{{.ExpertName}} has responded to the invitation for <strong>{{.CaseTitle}}</strong>.</p>
<p>Response: <strong>{{.Action}}</strong></p>
{{if .Note}}<p>Note from the expert:</p><blockquote>{{.Note}}</blockquote>{{end}}`))

// InvitationResponseEmailData contains data for the invitation response email
type InvitationResponseEmailData struct {
	ExpertName string
	CaseTitle  string
	Action     string
	Note       string
}

// BuildInvitationResponseEmail summarizes an expert's response for the
// internal distribution list.
func BuildInvitationResponseEmail(recipients []string, data InvitationResponseEmailData) *Email {
	return &Email{
		To:       append([]string{}, recipients...),
		Subject:  fmt.Sprintf("%s: %s (%s)", data.Action, data.CaseTitle, data.ExpertName),
		HTMLBody: renderTemplate(invitationResponseTmpl, data),
	}
}

var calendarEventTmpl = template.Must(template.New("calendar_event").Parse(`
<p>Hi {{.OwnerName}},</p>
<p>{{.ActorName}} has {{.Action}} an event on your calendar:</p>
<p><strong>{{.EventTitle}}</strong><br>{{.StartTime}} &ndash; {{.EndTime}}</p>
{{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}`))

// CalendarEventEmailData contains data for the calendar event email
type CalendarEventEmailData struct {
	OwnerName  string
	ActorName  string
	Action     string // "created" or "updated"
	EventTitle string
	StartTime  string
	EndTime    string
	Notes      string
}

// BuildCalendarEventEmail notifies a calendar owner about a change made
// by someone else.
func BuildCalendarEventEmail(ownerEmail string, data CalendarEventEmailData) *Email {
	return &Email{
		To:       []string{ownerEmail},
		Subject:  fmt.Sprintf("Calendar event %s: %s", data.Action, data.EventTitle),
		HTMLBody: renderTemplate(calendarEventTmpl, data),
	}
}

var leadTmpl = template.Must(template.New("lead").Parse(`
<p>New {{.FormName}} submission:</p>
<p><strong>Name:</strong> {{.Name}}<br>
<strong>Email:</strong> {{.Email}}<br>
{{if .Phone}}<strong>Phone:</strong> {{.Phone}}<br>{{end}}
{{if .Specialty}}<strong>Specialty:</strong> {{.Specialty}}<br>{{end}}</p>
{{if .Message}}<p><strong>Message:</strong></p><blockquote>{{.Message}}</blockquote>{{end}}`))

// LeadEmailData contains data for the public lead notification email
type LeadEmailData struct {
	FormName  string
	Name      string
	Email     string
	Phone     string
	Specialty string
	Message   string
}

// BuildLeadEmail alerts the internal team about a public form submission
func BuildLeadEmail(recipients []string, data LeadEmailData) *Email {
	return &Email{
		To:       append([]string{}, recipients...),
		Subject:  fmt.Sprintf("New %s submission from %s", data.FormName, data.Name),
		HTMLBody: renderTemplate(leadTmpl, data),
	}
}
