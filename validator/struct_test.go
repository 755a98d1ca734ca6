package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type page struct {
	Fields []string `json:"fields" validate:"omitempty,unique"`
	Limit  int      `json:"limit" validate:"gte=0"`
	Mode   string   `validate:"omitempty,oneof=asc desc"`
}

func TestValidateStruct(t *testing.T) {
	assert.Empty(t, ValidateStruct(&page{Limit: 1}))

	msgs := ValidateStruct(&page{Fields: []string{"a", "a"}, Limit: -1, Mode: "up"})
	assert.Equal(t, map[string]string{
		"fields": "The field 'fields' must be unique.",
		"limit":  "The field 'limit' must be greater than or equal to 0.",
		"Mode":   "The field 'Mode' must be one of [asc desc].",
	}, msgs)

	assert.Equal(t,
		"The field 'Mode' must be one of [asc desc]. The field 'fields' must be unique. The field 'limit' must be greater than or equal to 0.",
		Join(msgs))
}

func TestMessagesIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, Messages(page{}, nil))
	assert.Empty(t, Messages(page{}, assert.AnError))
}
