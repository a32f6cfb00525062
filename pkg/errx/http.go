package errx

// Body flattens the error into the JSON body returned to HTTP callers.
// Details are merged at the top level so clients can read fields such as
// "errors" or "valid" directly; "error" and "code" always win.
func (e *Error) Body() map[string]interface{} {
	body := make(map[string]interface{}, len(e.Details)+2)
	for k, v := range e.Details {
		body[k] = v
	}
	body["error"] = e.Message
	body["code"] = e.Code
	return body
}

// Status returns the HTTP status to answer with, defaulting to 500.
func (e *Error) Status() int {
	if e.HTTPStatus == 0 {
		return typeToHTTPStatus(e.Type)
	}
	return e.HTTPStatus
}
