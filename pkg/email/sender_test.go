package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmailValid(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"a.b+tag@sub.example.io",
	}
	for _, email := range valid {
		assert.True(t, IsEmailValid(email), email)
	}

	invalid := []string{
		"",
		"a@",
		"@example.com",
		"no-at-sign",
		"spaces in@example.com",
	}
	for _, email := range invalid {
		assert.False(t, IsEmailValid(email), email)
	}
}

func TestSendEmailInput_Validate(t *testing.T) {
	input := SendEmailInput{To: "alice@example.com", Subject: "hi", Body: "<p>hi</p>"}
	assert.NoError(t, input.Validate())

	assert.Error(t, (&SendEmailInput{Subject: "hi", Body: "x"}).Validate())
	assert.Error(t, (&SendEmailInput{To: "alice@example.com", Body: "x"}).Validate())
	assert.Error(t, (&SendEmailInput{To: "not-an-email", Subject: "hi", Body: "x"}).Validate())
}
