package payload

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFields(t *testing.T) {
	tests := []struct {
		name   string
		typ    ContentType
		fields Fields
		want   string
	}{
		{
			name:   "text is kept verbatim",
			typ:    TypeText,
			fields: Fields{FieldText: "hello"},
			want:   "hello",
		},
		{
			name:   "text keeps surrounding whitespace",
			typ:    TypeText,
			fields: Fields{FieldText: "  hi  "},
			want:   "  hi  ",
		},
		{
			name:   "url without scheme",
			typ:    TypeURL,
			fields: Fields{FieldURL: "example.com"},
			want:   "https://example.com",
		},
		{
			name:   "url with http scheme",
			typ:    TypeURL,
			fields: Fields{FieldURL: "http://x.com"},
			want:   "http://x.com",
		},
		{
			name:   "url with https scheme",
			typ:    TypeURL,
			fields: Fields{FieldURL: "https://x.com/a?b=c"},
			want:   "https://x.com/a?b=c",
		},
		{
			name:   "url only whitespace still gets scheme",
			typ:    TypeURL,
			fields: Fields{FieldURL: "   "},
			want:   "https://   ",
		},
		{
			name:   "empty url becomes bare scheme",
			typ:    TypeURL,
			fields: Fields{},
			want:   "https://",
		},
		{
			name:   "custom url follows url rule",
			typ:    TypeCustomURL,
			fields: Fields{FieldCustomURL: "my.link/x"},
			want:   "https://my.link/x",
		},
		{
			name:   "custom url reads its own field",
			typ:    TypeCustomURL,
			fields: Fields{FieldURL: "ignored.com", FieldCustomURL: "httpbin.org"},
			want:   "httpbin.org",
		},
		{
			name: "wifi",
			typ:  TypeWiFi,
			fields: Fields{
				FieldSSID:     "Net",
				FieldPassword: "pw",
				FieldSecurity: "WPA",
				FieldHidden:   "true",
			},
			want: "WIFI:T:WPA;S:Net;P:pw;H:true;;",
		},
		{
			name: "wifi visible network without password",
			typ:  TypeWiFi,
			fields: Fields{
				FieldSSID:     "Cafe",
				FieldSecurity: "nopass",
			},
			want: "WIFI:T:nopass;S:Cafe;P:;H:false;;",
		},
		{
			name: "wifi checkbox value",
			typ:  TypeWiFi,
			fields: Fields{
				FieldSSID:     "Home",
				FieldPassword: "secret",
				FieldSecurity: "WEP",
				FieldHidden:   "on",
			},
			want: "WIFI:T:WEP;S:Home;P:secret;H:true;;",
		},
		{
			name: "email link",
			typ:  TypeEmail,
			fields: Fields{
				FieldAddress: "a@b.com",
				FieldSubject: "Hi there",
				FieldBody:    "Line 1\nA&B=C?",
			},
			want: "mailto:a@b.com?subject=Hi%20there&body=Line%201%0AA%26B%3DC%3F",
		},
		{
			name:   "email with empty subject and body",
			typ:    TypeEmail,
			fields: Fields{FieldAddress: "a@b.com"},
			want:   "mailto:a@b.com?subject=&body=",
		},
		{
			name:   "phone",
			typ:    TypePhone,
			fields: Fields{FieldNumber: "+1 234 567"},
			want:   "tel:+1 234 567",
		},
		{
			name:   "empty phone is still a payload",
			typ:    TypePhone,
			fields: Fields{FieldNumber: ""},
			want:   "tel:",
		},
		{
			name:   "sms",
			typ:    TypeSMS,
			fields: Fields{FieldNumber: "+123", FieldMessage: "see you at 5!"},
			want:   "sms:+123?body=see%20you%20at%205!",
		},
		{
			name:   "social youtube handle",
			typ:    TypeSocial,
			fields: Fields{FieldPlatform: "youtube", FieldUsername: "@handle"},
			want:   "https://youtube.com/@handle",
		},
		{
			name:   "social link passes through",
			typ:    TypeSocial,
			fields: Fields{FieldPlatform: "facebook", FieldUsername: "https://custom.example/page"},
			want:   "https://custom.example/page",
		},
		{
			name:   "social linkedin",
			typ:    TypeSocial,
			fields: Fields{FieldPlatform: "linkedin", FieldUsername: "jane"},
			want:   "https://linkedin.com/in/jane",
		},
		{
			name:   "social strips only one leading at",
			typ:    TypeSocial,
			fields: Fields{FieldPlatform: "instagram", FieldUsername: "@@double"},
			want:   "https://instagram.com/@double",
		},
		{
			name:   "social keeps inner at",
			typ:    TypeSocial,
			fields: Fields{FieldPlatform: "twitter", FieldUsername: "a@b"},
			want:   "https://twitter.com/a@b",
		},
		{
			name:   "social tiktok",
			typ:    TypeSocial,
			fields: Fields{FieldPlatform: "tiktok", FieldUsername: "dancer"},
			want:   "https://tiktok.com/@dancer",
		},
		{
			name:   "social empty username still yields profile root",
			typ:    TypeSocial,
			fields: Fields{FieldPlatform: "facebook"},
			want:   "https://facebook.com/",
		},
		{
			name:   "social link ignores unknown platform",
			typ:    TypeSocial,
			fields: Fields{FieldPlatform: "myspace", FieldUsername: "http://myspace.com/tom"},
			want:   "http://myspace.com/tom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeFields(tt.typ, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeContact(t *testing.T) {
	got, err := Encode(Contact{
		Name:         "John Doe",
		Phone:        "+1234567890",
		Email:        "john@example.com",
		Organization: "ACME",
		URL:          "https://example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCARD\nVERSION:3.0\nFN:John Doe\nTEL:+1234567890\n"+
		"EMAIL:john@example.com\nORG:ACME\nURL:https://example.com\nEND:VCARD", got)
}

func TestEncodeContactEmptyFields(t *testing.T) {
	got, err := EncodeFields(TypeContact, Fields{})
	require.NoError(t, err)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:",
		"TEL:",
		"EMAIL:",
		"ORG:",
		"URL:",
		"END:VCARD",
	}, lines)
}

func TestEncodeRejectsEmptyPayload(t *testing.T) {
	tests := []struct {
		name   string
		typ    ContentType
		fields Fields
	}{
		{name: "blank text", typ: TypeText, fields: Fields{FieldText: "   "}},
		{name: "missing text", typ: TypeText, fields: Fields{}},
		{name: "newlines only", typ: TypeText, fields: Fields{FieldText: "\n\t\r\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeFields(tt.typ, tt.fields)
			assert.Empty(t, got)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.typ, verr.Type)
			assert.ErrorIs(t, err, ErrMissingInput)
		})
	}
}

func TestEncodeUnknownInput(t *testing.T) {
	_, err := EncodeFields("vcalendar", Fields{"text": "x"})
	assert.ErrorIs(t, err, ErrUnknownContentType)

	_, err = EncodeFields(TypeSocial, Fields{FieldPlatform: "myspace", FieldUsername: "tom"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrUnknownPlatform)

	_, err = Encode(nil)
	assert.ErrorIs(t, err, ErrUnknownContentType)
}

func TestEncodeWiFiPassesUnknownSecurity(t *testing.T) {
	got, err := Encode(WiFi{SSID: "n", Password: "p", Security: "WPA3"})
	require.NoError(t, err)
	assert.Equal(t, "WIFI:T:WPA3;S:n;P:p;H:false;;", got)
}

func TestEncodeIsIdempotent(t *testing.T) {
	fields := Fields{FieldAddress: "x@y.z", FieldSubject: "s p", FieldBody: "ü"}
	first, err := EncodeFields(TypeEmail, fields)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := EncodeFields(TypeEmail, fields)
			assert.NoError(t, err)
			assert.Equal(t, first, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, Fields{FieldAddress: "x@y.z", FieldSubject: "s p", FieldBody: "ü"}, fields)
}

func TestContentTypeFieldNames(t *testing.T) {
	for _, ct := range ContentTypes() {
		assert.True(t, ct.Valid(), ct)
		assert.NotEmpty(t, ct.FieldNames(), ct)
	}
	assert.False(t, ContentType("fax").Valid())
	assert.Equal(t, []string{FieldSSID, FieldPassword, FieldSecurity, FieldHidden}, TypeWiFi.FieldNames())
}

func TestParseReturnsSumType(t *testing.T) {
	c, err := Parse(TypeSMS, Fields{FieldNumber: "1", FieldMessage: "m"})
	require.NoError(t, err)
	assert.Equal(t, SMS{Number: "1", Message: "m"}, c)
	assert.Equal(t, TypeSMS, c.Type())
}

func TestFieldsBool(t *testing.T) {
	f := Fields{"a": "TRUE", "b": "on", "c": "no", "d": ""}
	assert.True(t, f.Bool("a"))
	assert.True(t, f.Bool("b"))
	assert.False(t, f.Bool("c"))
	assert.False(t, f.Bool("d"))
	assert.False(t, f.Bool("missing"))
}
