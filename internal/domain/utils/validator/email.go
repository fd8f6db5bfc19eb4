package validator

import (
	"net/mail"
	"strings"
)

// Email accepts a bare address such as "jane@example.com". Display names
// are rejected so the value can go straight into a To header.
func Email(email string, _ map[string]interface{}) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && addr.Name == ""
}
