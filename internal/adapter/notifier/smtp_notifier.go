package notifier

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/vamazon/storefront/internal/config"
	"github.com/vamazon/storefront/internal/port"
)

const senderName = "Vamazon"

// SMTPNotifier sends order-confirmation emails. Delivery honors the
// caller's context deadline so a hung mail server cannot hold a
// connection open past the checkout's notification timeout.
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) SendOrderConfirmation(ctx context.Context, msg port.OrderConfirmation) error {
	body := buildMessage(n.cfg.From, msg)

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", n.cfg.Addr())
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("set smtp deadline: %w", err)
		}
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}

	// Quit closes the connection on the happy path; Close only runs
	// when the conversation broke down part way.
	if err := n.deliver(client, msg.ToEmail, body); err != nil {
		client.Close()
		return err
	}
	return client.Quit()
}

func (n *SMTPNotifier) deliver(client *smtp.Client, to, body string) error {
	// no auth configured means a local relay such as MailHog
	if n.cfg.Username != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return nil
}

func buildMessage(from string, msg port.OrderConfirmation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s <%s>\r\n", senderName, from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.ToEmail)
	fmt.Fprintf(&b, "Subject: Order Confirmed - %s | %s\r\n", msg.OrderNumber, senderName)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n")

	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>Order Confirmed!</h2><p>Thank you for your order, %s!</p>", msg.CustomerName)
	fmt.Fprintf(&b, "<p>Order Number: <strong>%s</strong></p>", msg.OrderNumber)

	b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
	for _, item := range msg.Items {
		name := item.Name
		if len(name) > 50 {
			name = name[:50] + "..."
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			name, item.Quantity, item.LineTotal.StringFixed(2))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p>Total: <strong>%s</strong></p>", msg.TotalAmount.StringFixed(2))

	addr := msg.Shipping.AddressLine1
	if msg.Shipping.AddressLine2 != "" {
		addr += ", " + msg.Shipping.AddressLine2
	}
	fmt.Fprintf(&b, "<p>Shipping to:<br>%s<br>%s, %s - %s</p>",
		addr, msg.Shipping.City, msg.Shipping.State, msg.Shipping.Pincode)
	b.WriteString("</body></html>\r\n")

	return b.String()
}
