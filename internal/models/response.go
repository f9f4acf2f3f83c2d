package models

import "time"

// APIResponse is the uniform envelope carried by every endpoint,
// success and failure alike. Data is null on failure.
type APIResponse struct {
	OK        bool   `json:"ok"`
	Msg       string `json:"msg"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// NewResponse builds an envelope stamped with the current time.
func NewResponse(ok bool, msg string, data any) APIResponse {
	return APIResponse{
		OK:        ok,
		Msg:       msg,
		Data:      data,
		Timestamp: time.Now().Format(TimeFormat),
	}
}
