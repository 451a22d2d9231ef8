package http

import "net/http"

// GetJSON mounts a return-style JSON handler for GET: a nil error yields 200 with
// the value as data, an error is mapped through the project error codes
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Handle(func(req *http.Request) Response {
		out, err := h(req)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	}))
}
