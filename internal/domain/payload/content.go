package payload

import "strings"

// ContentType selects which fields are read and which encoding rule applies.
type ContentType string

const (
	TypeText      ContentType = "text"
	TypeURL       ContentType = "url"
	TypeCustomURL ContentType = "custom-url"
	TypeWiFi      ContentType = "wifi"
	TypeContact   ContentType = "contact"
	TypeEmail     ContentType = "email"
	TypePhone     ContentType = "phone"
	TypeSMS       ContentType = "sms"
	TypeSocial    ContentType = "social"
)

// ContentTypes returns every supported content type in menu order.
func ContentTypes() []ContentType {
	return []ContentType{
		TypeText,
		TypeURL,
		TypeCustomURL,
		TypeWiFi,
		TypeContact,
		TypeEmail,
		TypePhone,
		TypeSMS,
		TypeSocial,
	}
}

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	return t.FieldNames() != nil
}

// FieldNames returns the form fields read for t, in prompt order.
func (t ContentType) FieldNames() []string {
	switch t {
	case TypeText:
		return []string{FieldText}
	case TypeURL:
		return []string{FieldURL}
	case TypeCustomURL:
		return []string{FieldCustomURL}
	case TypeWiFi:
		return []string{FieldSSID, FieldPassword, FieldSecurity, FieldHidden}
	case TypeContact:
		return []string{FieldName, FieldPhone, FieldEmail, FieldOrganization, FieldURL}
	case TypeEmail:
		return []string{FieldAddress, FieldSubject, FieldBody}
	case TypePhone:
		return []string{FieldNumber}
	case TypeSMS:
		return []string{FieldNumber, FieldMessage}
	case TypeSocial:
		return []string{FieldPlatform, FieldUsername}
	}
	return nil
}

// Field names of a FieldSet.
const (
	FieldText         = "text"
	FieldURL          = "url"
	FieldCustomURL    = "custom-url"
	FieldSSID         = "ssid"
	FieldPassword     = "password"
	FieldSecurity     = "security"
	FieldHidden       = "hidden"
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldEmail        = "email"
	FieldOrganization = "organization"
	FieldAddress      = "address"
	FieldSubject      = "subject"
	FieldBody         = "body"
	FieldNumber       = "number"
	FieldMessage      = "message"
	FieldPlatform     = "platform"
	FieldUsername     = "username"
)

// Fields maps a form field name to the raw value the user typed.
// Missing keys read as empty strings.
type Fields map[string]string

// Get returns the raw value of the field, or "" when absent.
func (f Fields) Get(name string) string {
	return f[name]
}

// Bool reads a checkbox-style field.
func (f Fields) Bool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(f[name])) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// WiFiSecurity is the T: parameter of the WIFI share format.
type WiFiSecurity string

const (
	SecurityWPA    WiFiSecurity = "WPA"
	SecurityWEP    WiFiSecurity = "WEP"
	SecurityNoPass WiFiSecurity = "nopass"
)

// WiFiSecurities lists the security modes offered to users.
func WiFiSecurities() []WiFiSecurity {
	return []WiFiSecurity{SecurityWPA, SecurityWEP, SecurityNoPass}
}

// Content is one content type together with its field values.
type Content interface {
	Type() ContentType
	compose() (string, error)
}

type Text struct {
	Text string
}

type URL struct {
	URL string
}

type CustomURL struct {
	URL string
}

type WiFi struct {
	SSID     string
	Password string
	Security WiFiSecurity
	Hidden   bool
}

type Contact struct {
	Name         string
	Phone        string
	Email        string
	Organization string
	URL          string
}

type Email struct {
	Address string
	Subject string
	Body    string
}

type Phone struct {
	Number string
}

type SMS struct {
	Number  string
	Message string
}

type Social struct {
	Platform SocialPlatform
	Username string
}

func (Text) Type() ContentType      { return TypeText }
func (URL) Type() ContentType       { return TypeURL }
func (CustomURL) Type() ContentType { return TypeCustomURL }
func (WiFi) Type() ContentType      { return TypeWiFi }
func (Contact) Type() ContentType   { return TypeContact }
func (Email) Type() ContentType     { return TypeEmail }
func (Phone) Type() ContentType     { return TypePhone }
func (SMS) Type() ContentType       { return TypeSMS }
func (Social) Type() ContentType    { return TypeSocial }
