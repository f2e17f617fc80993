package verification

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"
)

func TestRequestColumnMapping(t *testing.T) {
	parsed, err := schema.Parse(&Request{}, &sync.Map{}, schema.NamingStrategy{})
	assert.NoError(t, err)
	assert.Equal(t, "domain_verifications", parsed.Table)

	// The payload column is named verification_data, not data; the raw
	// token lookup in the repository depends on it.
	field := parsed.LookUpField("Data")
	assert.NotNil(t, field)
	assert.Equal(t, "verification_data", field.DBName)
}
