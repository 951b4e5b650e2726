package mpesa

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	authPath    = "/oauth/v1/generate"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	transactionType = "CustomerPayBillOnline"
	requestTimeout  = 10 * time.Second
	timestampLayout = "20060102150405"
)

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	Environment    string // sandbox | production
	CallbackURL    string
	BaseURL        string // overrides Environment; used by tests
}

// Client talks to the Daraja API. Construct one per process and inject
// it; it holds no mutable state beyond the underlying HTTP client.
type Client struct {
	cfg  Config
	http *resty.Client
	now  func() time.Time
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		if cfg.Environment == "production" {
			base = productionBaseURL
		} else {
			base = sandboxBaseURL
		}
	}

	return &Client{
		cfg:  cfg,
		http: resty.New().SetBaseURL(base).SetTimeout(requestTimeout),
		now:  time.Now,
	}
}

func (c *Client) NormalizePhone(raw string) string { return NormalizePhone(raw) }

// AccessToken authenticates against Daraja with the consumer
// credentials. Tokens are not cached; Daraja issues a fresh one per call.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	var out accessTokenResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret).
		SetQueryParam("grant_type", "client_credentials").
		SetResult(&out).
		Get(authPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %s", ErrAuthFailed, resp.Status())
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrAuthFailed)
	}
	return out.AccessToken, nil
}

// STKPush submits a push-payment request. A nil error with a non-zero
// ResponseCode means the provider rejected the request; transport and
// auth failures come back as wrapped ErrUnreachable / ErrAuthFailed.
func (c *Client) STKPush(ctx context.Context, in PushInput) (PushResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return PushResponse{}, err
	}

	ts := c.now().Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.Passkey + ts))

	body := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         ts,
		TransactionType:   transactionType,
		Amount:            in.Amount,
		PartyA:            in.PhoneNumber,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       in.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  in.AccountReference,
		TransactionDesc:   in.Description,
	}

	var out PushResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(stkPushPath)
	if err != nil {
		return PushResponse{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.IsError() {
		return PushResponse{}, fmt.Errorf("%w: status %s", ErrUnreachable, resp.Status())
	}
	return out, nil
}
