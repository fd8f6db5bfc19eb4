package smtp

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// AttachmentName is the file name every QR code is delivered under.
const AttachmentName = "qrcode.png"

// Sender delivers a composed message. *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Client sends rendered QR codes by email.
type Client struct {
	sender Sender
	from   string
	domain string
	now    func() time.Time
}

// NewClient builds a Client. from is the sender address and domain is used
// for Message-ID headers.
func NewClient(sender Sender, from, domain string) *Client {
	return &Client{
		sender: sender,
		from:   from,
		domain: domain,
		now:    time.Now,
	}
}

// SendQRCode mails png to the given address as qrcode.png. caption becomes
// the plain text body.
func (c *Client) SendQRCode(to, caption string, png []byte) error {
	msg := gomail.NewMessage()

	msg.SetHeader("Message-ID", generateMessageID(c.domain))
	msg.SetHeader("Date", c.now().Format(time.RFC1123Z))
	msg.SetHeader("From", c.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your QR code")
	msg.SetBody("text/plain", caption)
	msg.Attach(AttachmentName,
		gomail.SetHeader(map[string][]string{"Content-Type": {"image/png"}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(png)
			return err
		}),
	)

	if err := c.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send qr code to %s: %w", to, err)
	}
	return nil
}

func generateMessageID(domain string) string {
	uniqueID := uuid.New().String()
	return fmt.Sprintf("<%s@%s>", uniqueID, domain)
}
