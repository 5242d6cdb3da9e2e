package services

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
)

const DefaultMailgunAPIBase = "https://api.mailgun.net/v3"

// MailgunSender delivers mail through the Mailgun messages API.
type MailgunSender struct {
	baseURL    string
	apiKey     string
	domain     string
	from       string
	httpClient *http.Client
}

func NewMailgunSender(baseURL, apiKey, domain, from string) *MailgunSender {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultMailgunAPIBase
	}
	return &MailgunSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		domain:     domain,
		from:       from,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *MailgunSender) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		s.httpClient = hc
	}
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(s.apiKey) == "" || strings.TrimSpace(s.domain) == "" || strings.TrimSpace(s.from) == "" {
		return oops.Code("MAIL_NOT_CONFIGURED").
			With("provider", "mailgun").
			Errorf("mailgun api key, domain and from address are required")
	}

	form := url.Values{}
	form.Set("from", s.from)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Text)
	form.Set("html", msg.htmlOrText())

	endpoint := s.baseURL + "/" + url.PathEscape(s.domain) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("provider", "mailgun").Wrap(err)
	}
	req.SetBasicAuth("api", s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("provider", "mailgun").Wrap(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return oops.Code("MAIL_SEND_FAILED").
			With("provider", "mailgun").
			With("status", resp.StatusCode).
			Errorf("mailgun send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
