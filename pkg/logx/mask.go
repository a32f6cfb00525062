package logx

import "strings"

// MaskEmail keeps the first character of the local part and the full domain,
// so lines stay greppable by domain without carrying the address.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
