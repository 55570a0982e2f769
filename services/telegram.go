package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/9pavankumar/dailyGMPalert/shared"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier delivers the digest through the Bot API sendMessage
// endpoint in HTML parse mode. Delivery failures are reported to the
// caller and never retried here.
type TelegramNotifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

func NewTelegramNotifier(botToken, chatID string, factory *shared.HTTPClientFactory, timeout time.Duration) *TelegramNotifier {
	return &TelegramNotifier{
		apiBase:  telegramAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   factory.Client(timeout),
	}
}

// Send posts the message to the configured chat. The text is expected to
// be HTML-escaped already.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" {
		return shared.NewServiceError(shared.ErrorCategoryConfiguration, shared.CodeBadConfig,
			"BOT_TOKEN and CHAT_ID must be set for delivery", "Send", false, nil)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{
		"chat_id":    {n.chatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return shared.NewServiceError(shared.ErrorCategoryNotification, shared.CodeDeliveryFailed,
			fmt.Sprintf("failed to build delivery request: %v", err), "Send", false, err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := n.client.Do(request)
	if err != nil {
		return shared.NewServiceError(shared.ErrorCategoryNotification, shared.CodeDeliveryFailed,
			fmt.Sprintf("delivery request failed: %v", err), "Send", true, err)
	}
	defer response.Body.Close()

	var apiReply struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(response.Body).Decode(&apiReply); err != nil {
		apiReply.Description = fmt.Sprintf("unreadable API response: %v", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 || !apiReply.OK {
		return shared.NewServiceError(shared.ErrorCategoryNotification, shared.CodeDeliveryFailed,
			fmt.Sprintf("Telegram API rejected message: status %d: %s", response.StatusCode, apiReply.Description),
			"Send", true, nil)
	}

	logrus.WithFields(logrus.Fields{
		"component":  "TelegramNotifier",
		"text_bytes": len(text),
	}).Info("Delivered digest message")
	return nil
}
