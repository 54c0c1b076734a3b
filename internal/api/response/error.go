package response

import "github.com/gin-gonic/gin"

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// Abort stops the handler chain and writes e as the response body.
func Abort(c *gin.Context, e Error) {
	c.AbortWithStatusJSON(e.Code, e)
}
