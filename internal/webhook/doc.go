// Package webhook serves the voice agent webhooks.
//
// Every endpoint accepts a JSON body, binds it into a request struct
// validated with gin's binding tags and calls the appointments service.
// Responses always carry a boolean "success"; failures add an "error"
// message and use 400 for bad input, 404 for unknown events and 500 for
// calendar failures.
package webhook
