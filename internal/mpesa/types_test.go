package mpesa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 5000.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254722000000}
        ]
      }
    }
  }
}`

const failedCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 1032,
      "ResultDesc": "Request cancelled by user"
    }
  }
}`

func TestParseCallback(t *testing.T) {
	t.Run("Success Payload", func(t *testing.T) {
		cb, err := ParseCallback([]byte(successCallback))
		require.NoError(t, err)

		assert.True(t, cb.Success())
		assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)

		receipt, ok := cb.ReceiptNumber()
		assert.True(t, ok)
		assert.Equal(t, "NLJ7RT61SV", receipt)

		txTime, ok := cb.TransactionTime()
		assert.True(t, ok)
		assert.Equal(t, time.Date(2019, 12, 19, 10, 21, 15, 0, time.Local), txTime)
	})

	t.Run("Failure Payload", func(t *testing.T) {
		cb, err := ParseCallback([]byte(failedCallback))
		require.NoError(t, err)

		assert.False(t, cb.Success())
		assert.Equal(t, 1032, cb.ResultCode)

		_, ok := cb.ReceiptNumber()
		assert.False(t, ok)
	})

	t.Run("Not JSON", func(t *testing.T) {
		_, err := ParseCallback([]byte("not json"))
		assert.Error(t, err)
	})

	t.Run("Missing CheckoutRequestID", func(t *testing.T) {
		_, err := ParseCallback([]byte(`{"Body":{"stkCallback":{"ResultCode":0}}}`))
		assert.Error(t, err)
	})
}
