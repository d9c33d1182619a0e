package logger

// RedactPhone masks a phone number for safe logging, keeping the last four
// digits: "3605551234" → "******1234". Inputs shorter than four digits are
// fully masked.
func RedactPhone(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) < 4 {
		return "****"
	}
	masked := make([]byte, len(digits))
	for i := range masked {
		if i < len(digits)-4 {
			masked[i] = '*'
		} else {
			masked[i] = digits[i]
		}
	}
	return string(masked)
}
