package otp

import "github.com/xlzd/gotp"

const secretLength = 16

// Generator produces short numeric one-time codes for email delivery.
type Generator interface {
	RandomCode(length int) string
}

type GOTPGenerator struct{}

func NewGOTPGenerator() *GOTPGenerator {
	return &GOTPGenerator{}
}

// RandomCode derives a numeric code from a TOTP over a throwaway random
// secret, so each call yields an independent code of the requested length.
func (g *GOTPGenerator) RandomCode(length int) string {
	totp := gotp.NewTOTP(gotp.RandomSecret(secretLength), length, 30, nil)
	return totp.Now()
}
