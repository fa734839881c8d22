package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// gatedSender blocks Send until released, to observe the goroutine
// hand-off from outside.
type gatedSender struct {
	release chan struct{}
	done    chan *Email
}

func (s *gatedSender) Send(email *Email) error {
	<-s.release
	s.done <- email
	return nil
}

func TestBuildInvitationResponseEmail(t *testing.T) {
	recipients := []string{"cases@test.com", "intake@test.com"}

	email := BuildInvitationResponseEmail(recipients, InvitationResponseEmailData{
		ExpertName: "Dana Reed",
		CaseTitle:  "Structural failure review",
		Action:     "Requested More Info",
		Note:       "Need the inspection report",
	})

	assert.Equal(t, recipients, email.To)
	assert.Contains(t, email.Subject, "Dana Reed")
	assert.Contains(t, email.HTMLBody, "Requested More Info")
	assert.Contains(t, email.HTMLBody, "Need the inspection report")
}

func TestEmailBodiesEscapeUserContent(t *testing.T) {
	email := BuildInvitationResponseEmail([]string{"cases@test.com"}, InvitationResponseEmailData{
		ExpertName: "<script>alert('x')</script>",
		CaseTitle:  "Case <b>1</b>",
		Action:     "Declined",
		Note:       `"quoted" & <em>styled</em>`,
	})

	assert.NotContains(t, email.HTMLBody, "<script>")
	assert.NotContains(t, email.HTMLBody, "<em>")
	assert.Contains(t, email.HTMLBody, "&lt;script&gt;")

	lead := BuildLeadEmail([]string{"intake@test.com"}, LeadEmailData{
		FormName: "Contact",
		Name:     "<img src=x>",
		Email:    "lead@test.com",
		Message:  "<a href='evil'>click</a>",
	})
	assert.NotContains(t, lead.HTMLBody, "<img")
	assert.NotContains(t, lead.HTMLBody, "<a href")
}

func TestDispatch(t *testing.T) {
	t.Run("Records through the sender", func(t *testing.T) {
		recorder := &RecorderSender{}
		Mail = recorder

		Dispatch(&Email{To: []string{"a@test.com"}, Subject: "hello", HTMLBody: "<p>hi</p>"})

		sent := recorder.Sent()
		assert.Len(t, sent, 1)
		assert.Equal(t, "hello", sent[0].Subject)
	})

	t.Run("Send failure is swallowed", func(t *testing.T) {
		recorder := &RecorderSender{Err: errors.New("smtp down")}
		Mail = recorder

		assert.NotPanics(t, func() {
			Dispatch(&Email{To: []string{"a@test.com"}, Subject: "doomed"})
		})
		assert.Empty(t, recorder.Sent())
	})

	t.Run("Nil sender is tolerated", func(t *testing.T) {
		Mail = nil
		assert.NotPanics(t, func() {
			Dispatch(&Email{Subject: "dropped"})
		})
		WaitForDispatch()
	})

	t.Run("Hand-off does not block the caller", func(t *testing.T) {
		gate := &gatedSender{release: make(chan struct{}), done: make(chan *Email, 1)}
		Mail = gate

		returned := make(chan struct{})
		go func() {
			Dispatch(&Email{To: []string{"a@test.com"}, Subject: "queued"})
			close(returned)
		}()

		select {
		case <-returned:
		case <-time.After(time.Second):
			t.Fatal("Dispatch blocked on the sender")
		}

		close(gate.release)
		WaitForDispatch()
		assert.Equal(t, "queued", (<-gate.done).Subject)
	})
}
