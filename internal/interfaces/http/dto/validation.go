package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// barcodePattern accepts the GTIN-style codes and internal SKU formats the
// source systems emit. Whitespace is rejected because the marketplace
// treats the barcode as an opaque key.
var barcodePattern = regexp.MustCompile(`^[0-9A-Za-z._-]{1,64}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("barcode", validBarcode)
	}
}

func validBarcode(fl validator.FieldLevel) bool {
	return barcodePattern.MatchString(fl.Field().String())
}
