package app

import _ "embed"

// OpenAPISpec is the API description served under /swagger
//
//go:embed openapi.yaml
var OpenAPISpec []byte
