// Package workflow drives the upload and analysis steps of a trash photo
package workflow

import (
	"net/url"
	"strings"
)

const (
	// UploadPath is the route of the upload page
	UploadPath = "/"
	// ResultPath is the route of the result page
	ResultPath = "/result"

	referenceParam = "ref"
)

var legacyStripper = strings.NewReplacer("?", "", "=", "")

// ResultURL is the result route carrying name as the analysis reference
func ResultURL(name string) string {
	return ResultPath + "?" + url.Values{referenceParam: {name}}.Encode()
}

// RecoverReference extracts the analysis reference from a result page query.
// Old links carry the name as a bare token (/result?photo.jpg); for those every
// '?' and '=' is stripped from the whole query.
func RecoverReference(rawQuery string) string {
	if values, err := url.ParseQuery(rawQuery); err == nil && values.Has(referenceParam) {
		return values.Get(referenceParam)
	}

	legacy := legacyStripper.Replace(rawQuery)
	if name, err := url.QueryUnescape(legacy); err == nil {
		return name
	}
	return legacy
}
