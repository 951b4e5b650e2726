package mpesa

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// stkPushRequest is the Daraja STK push body. Field names and the
// password scheme (base64(ShortCode+Passkey+Timestamp)) are fixed by the
// provider and must be reproduced exactly.
type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type PushInput struct {
	PhoneNumber      string // normalized 254XXXXXXXXX
	Amount           int64  // whole shillings
	AccountReference string
	Description      string
}

type PushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether the provider accepted the push request.
// A parsed response with a non-zero code is a rejection, not a transport
// failure; callers must treat the two differently.
func (r PushResponse) Accepted() bool { return r.ResponseCode == "0" }

// Callback envelope: {Body:{stkCallback:{...}}}

type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []MetadataItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type MetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

func (c StkCallback) Success() bool { return c.ResultCode == 0 }

// ReceiptNumber extracts the M-Pesa receipt from the metadata list.
func (c StkCallback) ReceiptNumber() (string, bool) {
	for _, item := range c.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			if s, ok := item.Value.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// TransactionTime extracts the provider transaction timestamp
// (item "TransactionDate", a YYYYMMDDHHMMSS number).
func (c StkCallback) TransactionTime() (time.Time, bool) {
	for _, item := range c.CallbackMetadata.Item {
		if item.Name != "TransactionDate" {
			continue
		}
		var raw string
		switch v := item.Value.(type) {
		case string:
			raw = v
		case float64:
			raw = strconv.FormatInt(int64(math.Round(v)), 10)
		case json.Number:
			raw = v.String()
		default:
			return time.Time{}, false
		}
		t, err := time.ParseInLocation("20060102150405", raw, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseCallback decodes a raw webhook body into the strict envelope.
// A payload without a CheckoutRequestID is rejected before it can reach
// business logic.
func ParseCallback(raw []byte) (StkCallback, error) {
	var env CallbackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return StkCallback{}, fmt.Errorf("decode callback: %w", err)
	}
	cb := env.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return StkCallback{}, fmt.Errorf("callback missing CheckoutRequestID")
	}
	return cb, nil
}
