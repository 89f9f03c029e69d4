package handler

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Response is the function result. It serializes to the API Gateway proxy
// integration shape: statusCode, headers and a string body.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// NewResponse creates a JSON Response.
func NewResponse(statusCode int, body string) Response {
	return Response{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: body,
	}
}

// WithHeader returns a copy of r with the header set. The original header
// map is left untouched.
func (r Response) WithHeader(key, value string) Response {
	headers := make(map[string]string, len(r.Headers)+1)
	maps.Copy(headers, r.Headers)
	headers[key] = value
	r.Headers = headers
	return r
}

// WithStatusCode updates the status code in the Response
func (r Response) WithStatusCode(statusCode int) Response {
	r.StatusCode = statusCode
	return r
}

// WithJSONBody returns a copy of r whose body is v encoded as JSON.
func (r Response) WithJSONBody(v any) (Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return r, fmt.Errorf("failed to encode response body: %w", err)
	}
	r.Body = string(body)
	return r, nil
}
