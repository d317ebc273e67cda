/*
Package errs provides the relay's error types and business error codes.

This file maps each code to its user-facing message and HTTP status.
Codes without an explicit status default to 200 inside NewError.
*/
package errs

import "net/http"

// errorMap holds the CustomError template for every known code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Content Errors
	ErrRoomNotFound:          {Code: ErrRoomNotFound, Message: "Room not found or expired", Status: http.StatusNotFound},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message has no content."},
	ErrMessageKindInvalid:    {Code: ErrMessageKindInvalid, Message: "Unsupported message type."},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusBadRequest},
	ErrFileTypeInvalid:       {Code: ErrFileTypeInvalid, Message: "Unsupported file type.", Status: http.StatusBadRequest},
	ErrAttachmentKeyInvalid:  {Code: ErrAttachmentKeyInvalid, Message: "Invalid attachment.", Status: http.StatusBadRequest},

	// 3xxx: Connection and Session Errors
	ErrMissingConnectParams: {Code: ErrMissingConnectParams, Message: "Missing roomId or nickname", Status: http.StatusBadRequest},
	ErrTooFrequentReconnect: {Code: ErrTooFrequentReconnect, Message: "Too frequent reconnections"},
	ErrSessionReplaced:      {Code: ErrSessionReplaced, Message: "Replaced by new connection"},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File storage is unavailable. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageDisabled:   {Code: ErrStorageDisabled, Message: "Attachments are not enabled on this relay.", Status: http.StatusNotFound},
}
