package structures

import "net/http"

type Route struct {
	Url     string
	Method  string
	Handler http.Handler
}
