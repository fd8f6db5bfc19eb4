// Package payload turns a content type and its form fields into the text
// stored in a QR code: plain text, normalised URLs, WIFI share strings,
// vCard 3.0 blocks and mailto/tel/sms links.
//
// Encoding is a pure function of its input and is safe for concurrent use.
package payload

import (
	"strings"
)

// Encode returns the QR payload for c.
//
// Only the composed result is checked: if it is empty after trimming the
// error is a *ValidationError wrapping ErrMissingInput. The returned payload
// itself is not trimmed.
func Encode(c Content) (string, error) {
	if c == nil {
		return "", invalid("", ErrUnknownContentType)
	}

	data, err := c.compose()
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(data) == "" {
		return "", invalid(c.Type(), ErrMissingInput)
	}

	return data, nil
}

// EncodeFields parses fields for t and encodes the result.
func EncodeFields(t ContentType, fields Fields) (string, error) {
	c, err := Parse(t, fields)
	if err != nil {
		return "", err
	}
	return Encode(c)
}

// Parse builds the Content for t from raw form values. Values are taken as
// typed; nothing is trimmed or validated here.
func Parse(t ContentType, fields Fields) (Content, error) {
	switch t {
	case TypeText:
		return Text{Text: fields.Get(FieldText)}, nil
	case TypeURL:
		return URL{URL: fields.Get(FieldURL)}, nil
	case TypeCustomURL:
		return CustomURL{URL: fields.Get(FieldCustomURL)}, nil
	case TypeWiFi:
		return WiFi{
			SSID:     fields.Get(FieldSSID),
			Password: fields.Get(FieldPassword),
			Security: WiFiSecurity(fields.Get(FieldSecurity)),
			Hidden:   fields.Bool(FieldHidden),
		}, nil
	case TypeContact:
		return Contact{
			Name:         fields.Get(FieldName),
			Phone:        fields.Get(FieldPhone),
			Email:        fields.Get(FieldEmail),
			Organization: fields.Get(FieldOrganization),
			URL:          fields.Get(FieldURL),
		}, nil
	case TypeEmail:
		return Email{
			Address: fields.Get(FieldAddress),
			Subject: fields.Get(FieldSubject),
			Body:    fields.Get(FieldBody),
		}, nil
	case TypePhone:
		return Phone{Number: fields.Get(FieldNumber)}, nil
	case TypeSMS:
		return SMS{
			Number:  fields.Get(FieldNumber),
			Message: fields.Get(FieldMessage),
		}, nil
	case TypeSocial:
		return Social{
			Platform: SocialPlatform(fields.Get(FieldPlatform)),
			Username: fields.Get(FieldUsername),
		}, nil
	}
	return nil, invalid(t, ErrUnknownContentType)
}

// NormalizeURL prepends https:// unless the value already starts with "http".
// Whitespace-only input is not special: it still gets the scheme.
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return "https://" + raw
}

func (c Text) compose() (string, error) {
	return c.Text, nil
}

func (c URL) compose() (string, error) {
	return NormalizeURL(c.URL), nil
}

func (c CustomURL) compose() (string, error) {
	return NormalizeURL(c.URL), nil
}

func (c WiFi) compose() (string, error) {
	hidden := "false"
	if c.Hidden {
		hidden = "true"
	}

	var b strings.Builder
	b.WriteString("WIFI:T:")
	b.WriteString(string(c.Security))
	b.WriteString(";S:")
	b.WriteString(c.SSID)
	b.WriteString(";P:")
	b.WriteString(c.Password)
	b.WriteString(";H:")
	b.WriteString(hidden)
	b.WriteString(";;")
	return b.String(), nil
}

func (c Contact) compose() (string, error) {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + c.Name,
		"TEL:" + c.Phone,
		"EMAIL:" + c.Email,
		"ORG:" + c.Organization,
		"URL:" + c.URL,
		"END:VCARD",
	}
	return strings.Join(lines, "\n"), nil
}

func (c Email) compose() (string, error) {
	return "mailto:" + c.Address +
		"?subject=" + EscapeComponent(c.Subject) +
		"&body=" + EscapeComponent(c.Body), nil
}

func (c Phone) compose() (string, error) {
	return "tel:" + c.Number, nil
}

func (c SMS) compose() (string, error) {
	return "sms:" + c.Number + "?body=" + EscapeComponent(c.Message), nil
}

func (c Social) compose() (string, error) {
	// a full link wins over the platform template, whatever the platform
	if strings.HasPrefix(c.Username, "http") {
		return c.Username, nil
	}

	profile, ok := c.Platform.ProfileURL(c.Username)
	if !ok {
		return "", invalid(TypeSocial, ErrUnknownPlatform)
	}
	return profile, nil
}
