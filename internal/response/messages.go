package response

// Envelope statuses.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Auth messages.
const (
	MsgLogin         = "User login successfully"
	MsgRegister      = "User registers successfully"
	MsgMe            = "Get auth detail successfully"
	MsgRefresh       = "User token refresh was successful"
	MsgLogout        = "User logout successfully"
	MsgUnauthorized  = "Unauthorized, you are not authorized to access this resource"
	MsgUserNotFound  = "Make sure email and password are correct"
	MsgTokenMissing  = "Token is not provided"
	MsgTokenInvalid  = "Token is invalid"
	MsgTokenExpired  = "Token has expired"
	MsgTooManyTries  = "Too many requests, please slow down"
	MsgInternalError = "Internal Server Error"
	MsgBadBody       = "Invalid request body"
	MsgBodyTooLarge  = "Request body too large"
)

// Resource names the messages of one resource's operations.
type Resource struct {
	List    string
	Detail  string
	Created string
	Updated string
	Deleted string
}

var (
	Task = Resource{
		List:    "Get tasks successfully",
		Detail:  "Get detail task successfully",
		Created: "Task created successfully",
		Updated: "Task updated successfully",
		Deleted: "Task deleted successfully",
	}
	TaskList = Resource{
		List:    "Get task list successfully",
		Detail:  "Get detail task list successfully",
		Created: "Task list created successfully",
		Updated: "Task list updated successfully",
		Deleted: "Task list deleted successfully",
	}
	TaskListStorage = Resource{
		List:    "Get task list storage successfully",
		Detail:  "Get detail task list storage successfully",
		Created: "Task list storage created successfully",
		Updated: "Task list storage updated successfully",
		Deleted: "Task list storage deleted successfully",
	}
)
