package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/9pavankumar/dailyGMPalert/models"
)

const (
	datePlaceholder = "-"
	sizePlaceholder = "—"
)

// MessageFormatter renders a ranked digest into the Telegram HTML
// message. Formatting is pure: the same digest always yields the same
// bytes.
type MessageFormatter struct{}

func NewMessageFormatter() *MessageFormatter {
	return &MessageFormatter{}
}

// Format produces the full digest text. Free-text fields coming from the
// scraped page are HTML-escaped; the surrounding markup is ours.
func (f *MessageFormatter) Format(digest *models.Digest) string {
	var message strings.Builder
	fmt.Fprintf(&message, "📢 IPO Updates - %s\n\n", digest.GeneratedFor.Format("02-01-06"))

	if digest.IsEmpty() {
		message.WriteString("No IPOs available today.\n")
		return message.String()
	}

	for _, list := range digest.Lists() {
		if len(list.Records) == 0 {
			continue
		}
		fmt.Fprintf(&message, "🔜 %s\n", list.Title)
		for _, record := range list.Records {
			fmt.Fprintf(&message, "%d. %s (Opens: %s, Closes: %s)\n",
				record.Rank,
				html.EscapeString(record.Name),
				formatDate(record.OpenDate),
				formatDate(record.CloseDate))
		}
		message.WriteString("\n")
	}

	message.WriteString("📊 Details\n\n")
	for _, list := range digest.Lists() {
		for _, record := range list.Records {
			f.writeDetail(&message, record)
		}
	}

	return message.String()
}

func (f *MessageFormatter) writeDetail(message *strings.Builder, record models.IpoRecord) {
	fmt.Fprintf(message, "🔜 %s\n", html.EscapeString(record.Name))
	fmt.Fprintf(message, "💰 Issue Size: %s\n", formatSize(record.SizeCrore))
	fmt.Fprintf(message, "📈 GMP: %s | 📊 Sub: %s\n",
		html.EscapeString(record.Premium.Display()),
		html.EscapeString(orDash(record.SubscriptionRaw)))
	fmt.Fprintf(message, "🗓 %s–%s", formatDate(record.OpenDate), formatDate(record.CloseDate))
	if record.ListingStatusRaw != "" {
		fmt.Fprintf(message, " | %s", html.EscapeString(record.ListingStatusRaw))
	}
	message.WriteString("\n\n")
}

func formatDate(date *time.Time) string {
	if date == nil {
		return datePlaceholder
	}
	return date.Format("02-Jan")
}

func formatSize(sizeCrore *float64) string {
	if sizeCrore == nil {
		return sizePlaceholder
	}
	return fmt.Sprintf("₹%.2f Cr", *sizeCrore)
}

func orDash(text string) string {
	if text == "" {
		return datePlaceholder
	}
	return text
}
