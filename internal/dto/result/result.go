package result

type Result struct {
	Success  bool        `json:"success"`
	ErrorMsg string      `json:"errorMsg,omitempty"`
	Code     string      `json:"code,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Total    *int64      `json:"total,omitempty"`
}

// Ok returns a success response without data.
func Ok() Result {
	return Result{Success: true}
}

// OkWithData returns a success response carrying data.
func OkWithData(data interface{}) Result {
	return Result{Success: true, Data: data}
}

// OkWithPage returns a paged success response.
func OkWithPage(data interface{}, total int64) Result {
	return Result{Success: true, Data: data, Total: &total}
}

// Fail returns a failure response.
func Fail(msg string) Result {
	return Result{Success: false, ErrorMsg: msg}
}

// FailWithCode returns a failure response with a machine-readable error code.
func FailWithCode(msg, code string) Result {
	return Result{Success: false, ErrorMsg: msg, Code: code}
}
