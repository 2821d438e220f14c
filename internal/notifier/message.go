package notifier

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/markdown"
	"github.com/pfrederiksen/saturday-alert/internal/season"
	"github.com/wneessen/go-mail"
)

// SubjectTimeLayout formats the send time in the subject line
const SubjectTimeLayout = "2006-01-02 15:04:05"

// Message is a composed alert email
type Message struct {
	ID      string // Message-ID without angle brackets
	From    string
	To      string
	Subject string
	Date    time.Time
	Alert   string
	Dump    string
}

// Compose builds the alert email sent from and to address
func Compose(label, address string, table *season.Table, availability *season.Availability, now time.Time) (*Message, error) {
	dump, err := RenderTable(table)
	if err != nil {
		return nil, err
	}

	alert := ""
	if availability != nil {
		alert = availability.Message
	}

	return &Message{
		ID:      uuid.NewString() + "@saturday-alert",
		From:    address,
		To:      address,
		Subject: fmt.Sprintf("%s Saturday Alert: %s", label, now.Format(SubjectTimeLayout)),
		Date:    now,
		Alert:   alert,
		Dump:    dump,
	}, nil
}

// RenderTable renders the whole calendar table as a markdown table
func RenderTable(table *season.Table) (string, error) {
	if table == nil || table.Len() == 0 {
		return "No Saturdays were fetched.\n", nil
	}

	rows := make([][]string, 0, table.Len())
	for _, row := range table.Rows() {
		rows = append(rows, []string{row.Month, row.DateText(), strconv.Itoa(row.EventCount)})
	}

	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)
	md.Table(markdown.TableSet{
		Header: []string{"month", "date_saturday", "event_count"},
		Rows:   rows,
	})
	if err := md.Build(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

// DumpFileName names the part carrying the table dump
const DumpFileName = "saturdays.txt"

// Msg builds the email: a multipart/mixed message whose first text/plain part
// is the alert and whose second is the table dump
func (m *Message) Msg() (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8), mail.WithEncoding(mail.EncodingQP))
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetDateWithValue(m.Date)
	msg.SetMessageIDWithValue(m.ID)

	msg.SetBodyString(mail.TypeTextPlain, m.Alert+"\n")
	if err := msg.AttachReader(DumpFileName, strings.NewReader(m.Dump),
		mail.WithFileContentType(mail.TypeTextPlain),
		mail.WithFileEncoding(mail.EncodingQP),
	); err != nil {
		return nil, fmt.Errorf("attaching table dump: %w", err)
	}

	return msg, nil
}

// Bytes renders the message as it goes on the wire
func (m *Message) Bytes() ([]byte, error) {
	msg, err := m.Msg()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing message: %w", err)
	}
	return buf.Bytes(), nil
}

// Text renders the message for a terminal
func (m *Message) Text() string {
	return fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\n\n%s\n\n%s", m.From, m.To, m.Subject, m.Alert, m.Dump)
}
