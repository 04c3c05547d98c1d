// Package openapi встраивает OpenAPI документ HTTP API для Swagger UI.
package openapi

import (
	"embed"
)

const specFile = "openapi.json"

//go:embed openapi.json
var content embed.FS

// GetSpec возвращает содержимое OpenAPI спецификации
func GetSpec() ([]byte, error) {
	return content.ReadFile(specFile)
}

// MustGetSpec возвращает спецификацию или паникует
func MustGetSpec() []byte {
	data, err := GetSpec()
	if err != nil {
		panic("failed to load OpenAPI spec: " + err.Error())
	}
	return data
}
