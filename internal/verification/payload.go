package verification

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Payloads form a tagged union keyed by Method. Shapes are validated at the
// store boundary so an opaque JSON bag never leaks past this package.

// DNSPayload describes the expected TXT record.
type DNSPayload struct {
	RecordName  string `json:"record_name"`
	RecordValue string `json:"record_value"`
}

// FilePayload describes the hosted proof file.
type FilePayload struct {
	FileLocation string `json:"file_location"`
	FileContent  string `json:"file_content"`
}

// HTMLPayload describes the expected meta tag on the domain root.
type HTMLPayload struct {
	TagName    string `json:"tag_name"`
	TagContent string `json:"tag_content"`
}

// EmailPayload describes the mailbox confirmation link.
type EmailPayload struct {
	RecipientEmail string     `json:"recipient_email"`
	Token          string     `json:"token"`
	Confirmed      bool       `json:"confirmed"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
}

// Payload holds exactly one variant, matching the request's method.
type Payload struct {
	DNS   *DNSPayload
	File  *FilePayload
	HTML  *HTMLPayload
	Email *EmailPayload
}

// Encode marshals the variant matching method into the stored JSON column.
func (p Payload) Encode(method Method) (datatypes.JSON, error) {
	var v any
	switch method {
	case MethodDNS:
		v = p.DNS
	case MethodFile:
		v = p.File
	case MethodHTML:
		v = p.HTML
	case MethodEmail:
		v = p.Email
	default:
		return nil, fmt.Errorf("unknown verification method %q", method)
	}
	if v == nil || isNilVariant(p, method) {
		return nil, fmt.Errorf("payload variant missing for method %q", method)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", method, err)
	}
	return datatypes.JSON(raw), nil
}

func isNilVariant(p Payload, method Method) bool {
	switch method {
	case MethodDNS:
		return p.DNS == nil
	case MethodFile:
		return p.File == nil
	case MethodHTML:
		return p.HTML == nil
	case MethodEmail:
		return p.Email == nil
	}
	return true
}

// DecodePayload unmarshals and validates the stored JSON against the
// request's method.
func DecodePayload(method Method, raw datatypes.JSON) (Payload, error) {
	var p Payload
	switch method {
	case MethodDNS:
		var dns DNSPayload
		if err := json.Unmarshal(raw, &dns); err != nil {
			return p, fmt.Errorf("invalid dns payload: %w", err)
		}
		if dns.RecordName == "" || dns.RecordValue == "" {
			return p, fmt.Errorf("dns payload missing record_name or record_value")
		}
		p.DNS = &dns
	case MethodFile:
		var file FilePayload
		if err := json.Unmarshal(raw, &file); err != nil {
			return p, fmt.Errorf("invalid file payload: %w", err)
		}
		if file.FileLocation == "" || file.FileContent == "" {
			return p, fmt.Errorf("file payload missing file_location or file_content")
		}
		p.File = &file
	case MethodHTML:
		var html HTMLPayload
		if err := json.Unmarshal(raw, &html); err != nil {
			return p, fmt.Errorf("invalid html payload: %w", err)
		}
		if html.TagName == "" || html.TagContent == "" {
			return p, fmt.Errorf("html payload missing tag_name or tag_content")
		}
		p.HTML = &html
	case MethodEmail:
		var email EmailPayload
		if err := json.Unmarshal(raw, &email); err != nil {
			return p, fmt.Errorf("invalid email payload: %w", err)
		}
		if email.RecipientEmail == "" || email.Token == "" {
			return p, fmt.Errorf("email payload missing recipient_email or token")
		}
		p.Email = &email
	default:
		return p, fmt.Errorf("unknown verification method %q", method)
	}
	return p, nil
}
