package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Replays a Daraja STK callback against a local server. Daraja does not
// sign callbacks, so the body alone is the whole delivery.

type metadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

type callbackPayload struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []metadataItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/callbacks/mpesa", "Callback URL")
	checkoutID := flag.String("checkout-id", "", "CheckoutRequestID of the pending attempt (required)")
	merchantID := flag.String("merchant-id", "mr_"+fmt.Sprint(time.Now().Unix()), "MerchantRequestID")
	resultCode := flag.Int("result-code", 0, "ResultCode (0 = success)")
	resultDesc := flag.String("result-desc", "The service request is processed successfully.", "ResultDesc")
	receipt := flag.String("receipt", "QK12XYZ9AB", "MpesaReceiptNumber (success only)")
	amount := flag.Int("amount", 5000, "Amount in shillings (success only)")
	phone := flag.String("phone", "254722000000", "PhoneNumber (success only)")
	dryRun := flag.Bool("dry-run", false, "Only print the payload, don't send")

	flag.Parse()

	if *checkoutID == "" {
		fmt.Fprintf(os.Stderr, "Error: -checkout-id is required\n")
		os.Exit(1)
	}

	var payload callbackPayload
	cb := &payload.Body.StkCallback
	cb.MerchantRequestID = *merchantID
	cb.CheckoutRequestID = *checkoutID
	cb.ResultCode = *resultCode
	cb.ResultDesc = *resultDesc

	if *resultCode == 0 {
		cb.CallbackMetadata.Item = []metadataItem{
			{Name: "Amount", Value: *amount},
			{Name: "MpesaReceiptNumber", Value: *receipt},
			{Name: "TransactionDate", Value: time.Now().Format("20060102150405")},
			{Name: "PhoneNumber", Value: *phone},
		}
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest("POST", *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
