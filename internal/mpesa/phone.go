package mpesa

import "strings"

const countryCode = "254"

// NormalizePhone converts a locally formatted Kenyan number into the
// Daraja wire format (254XXXXXXXXX). Accepts "0722123456",
// "254722123456", "+254722123456", "722123456" and the same with spaces
// or hyphens. Pure and total: any input yields a best-effort result.
func NormalizePhone(raw string) string {
	phone := strings.NewReplacer("+", "", " ", "", "-", "").Replace(raw)

	if strings.HasPrefix(phone, "0") {
		phone = countryCode + phone[1:]
	}
	if !strings.HasPrefix(phone, countryCode) {
		phone = countryCode + phone
	}
	return phone
}
