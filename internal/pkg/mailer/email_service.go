package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

type WeeklyReport struct {
	Username        string
	PeriodFrom      string
	PeriodTo        string
	NotesCreated    int64
	ActiveNotes     int64
	NotesInTrash    int64
	TotalCategories int64
	TotalTags       int64
	TopCategories   []string
	TopTags         []string
}

type IEmailService interface {
	SendNoteShared(toEmail, sharedBy, noteTitle, permission string) error
	SendWeeklyReport(toEmail string, report WeeklyReport) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderName, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
		clientURL:   clientURL,
	}
}

func (s *emailService) newMessage(toEmail, subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	return m
}

func (s *emailService) SendNoteShared(toEmail, sharedBy, noteTitle, permission string) error {
	m := s.newMessage(toEmail, fmt.Sprintf("%s shared a note with you", sharedBy))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A note was shared with you</h2>
			<p><strong>%s</strong> shared <em>%s</em> with you (%s access).</p>
			<a href="%s/shared" style="background-color: #3B82F6; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open shared notes</a>
		</div>
	`, html.EscapeString(sharedBy), html.EscapeString(noteTitle), html.EscapeString(permission), s.clientURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send share notification to %s: %w", toEmail, err)
	}
	return nil
}

func (s *emailService) SendWeeklyReport(toEmail string, r WeeklyReport) error {
	m := s.newMessage(toEmail, fmt.Sprintf("Your weekly notes summary - %s", r.PeriodTo))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s, here is your week</h2>
			<p>%s to %s</p>
			<ul>
				<li>Notes created: %d</li>
				<li>Active notes: %d</li>
				<li>Notes in trash: %d</li>
				<li>Categories: %d</li>
				<li>Tags: %d</li>
			</ul>
			<p>Top categories: %s</p>
			<p>Top tags: %s</p>
		</div>
	`, html.EscapeString(r.Username), r.PeriodFrom, r.PeriodTo,
		r.NotesCreated, r.ActiveNotes, r.NotesInTrash, r.TotalCategories, r.TotalTags,
		html.EscapeString(strings.Join(r.TopCategories, ", ")),
		html.EscapeString(strings.Join(r.TopTags, ", ")))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send weekly report to %s: %w", toEmail, err)
	}
	return nil
}
