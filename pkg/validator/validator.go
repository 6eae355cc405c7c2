package validator

import (
	"log"
	"reflect"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterGinValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("ethaddress", ethAddressValidator); err != nil {
			log.Fatal("register ethaddress validator failed")
		}
		if err := v.RegisterValidation("tokenamount", tokenAmountValidator); err != nil {
			log.Fatal("register tokenamount validator failed")
		}
	}
}

// ethAddressValidator accepts 0x-prefixed 40-hex-char addresses only.
var ethAddressValidator validator.Func = func(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	return strings.HasPrefix(addr, "0x") && common.IsHexAddress(addr)
}

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// tokenAmountValidator checks a positive decimal string. Amounts are never
// parsed into floats.
var tokenAmountValidator validator.Func = func(fl validator.FieldLevel) bool {
	amount := fl.Field().String()
	if !amountPattern.MatchString(amount) {
		return false
	}
	return strings.Trim(strings.ReplaceAll(amount, ".", ""), "0") != ""
}
