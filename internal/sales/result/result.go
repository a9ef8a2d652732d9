// Package result defines the tagged outcome of a sales operation.
package result

type Status string

const (
	StatusFound    Status = "FOUND"
	StatusNotFound Status = "NOT_FOUND"
	StatusConflict Status = "CONFLICT"
)

const (
	MessageNotFound     = "Data Not Found"
	MessageAlreadyExist = "Sales already exist"
	MessageDeleted      = "Successfully"
	MessageModified     = "Sales was modified concurrently"
)

// Result carries the outcome of an operation. Failures are reported through
// the accompanying error, never through Status.
type Result[T any] struct {
	Status  Status `json:"status"`
	Value   T      `json:"data"`
	Message string `json:"message,omitempty"`
}

func Found[T any](v T) Result[T] {
	return Result[T]{Status: StatusFound, Value: v}
}

func NotFound[T any]() Result[T] {
	return Result[T]{Status: StatusNotFound, Message: MessageNotFound}
}

func Conflict[T any](msg string) Result[T] {
	return Result[T]{Status: StatusConflict, Message: msg}
}

// Deleted is the FOUND outcome of a deletion.
func Deleted() Result[struct{}] {
	return Result[struct{}]{Status: StatusFound, Message: MessageDeleted}
}

func (r Result[T]) IsFound() bool {
	return r.Status == StatusFound
}
