/*
Package errs provides the relay's error types and business error codes.

Codes identify specific failure modes both in server logs and in payloads
delivered to clients over the wire or the status API.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the per-IP limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room and Content Errors
const (
	// ErrRoomNotFound indicates that the room does not exist or has expired.
	ErrRoomNotFound = 2101

	// ErrMessageContentTooLong indicates message content over the byte bound.
	ErrMessageContentTooLong = 2201

	// ErrMessageEmpty indicates a message with neither content nor a file reference.
	ErrMessageEmpty = 2202

	// ErrMessageKindInvalid indicates an inbound message kind outside text/image/video.
	ErrMessageKindInvalid = 2203

	// ErrFileSizeTooLarge indicates an attachment over the size cap.
	ErrFileSizeTooLarge = 2301

	// ErrFileTypeInvalid indicates a disallowed or mismatched attachment type.
	ErrFileTypeInvalid = 2302

	// ErrAttachmentKeyInvalid indicates a file key outside the room's namespace.
	ErrAttachmentKeyInvalid = 2303
)

// 3xxx: Connection and Session Errors
const (
	// ErrMissingConnectParams indicates a connect attempt without roomId or nickname.
	ErrMissingConnectParams = 3001

	// ErrTooFrequentReconnect indicates admits for the same identity inside the throttle window.
	ErrTooFrequentReconnect = 3002

	// ErrSessionReplaced indicates the connection was superseded by a newer one.
	ErrSessionReplaced = 3003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates a failure talking to the attachment store.
	ErrFileStorageFailed = 5001

	// ErrStorageDisabled indicates the relay runs without an attachment store configured.
	ErrStorageDisabled = 5002
)
