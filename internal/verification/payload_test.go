package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestDecodePayloadValidatesRequiredFields(t *testing.T) {
	_, err := DecodePayload(MethodDNS, datatypes.JSON(`{"record_name":"_domainverify.example.com"}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "record_value")

	_, err = DecodePayload(MethodFile, datatypes.JSON(`{"file_content":"abc"}`))
	assert.Error(t, err)

	_, err = DecodePayload(MethodEmail, datatypes.JSON(`{"recipient_email":"a@b.c"}`))
	assert.Error(t, err)

	_, err = DecodePayload(Method("carrier-pigeon"), datatypes.JSON(`{}`))
	assert.Error(t, err)
}

func TestEncodeRejectsMissingVariant(t *testing.T) {
	_, err := Payload{}.Encode(MethodDNS)
	assert.Error(t, err)

	_, err = Payload{DNS: &DNSPayload{RecordName: "n", RecordValue: "v"}}.Encode(MethodHTML)
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, err := Payload{HTML: &HTMLPayload{TagName: "domain-verify", TagContent: "tok"}}.Encode(MethodHTML)
	assert.NoError(t, err)

	decoded, err := DecodePayload(MethodHTML, data)
	assert.NoError(t, err)
	assert.Equal(t, "domain-verify", decoded.HTML.TagName)
	assert.Equal(t, "tok", decoded.HTML.TagContent)
}
