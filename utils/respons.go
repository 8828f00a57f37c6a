package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details string      `json:"details,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status: false,
		Error:  err.Error(),
	})
}

// RespondFailure is used for store failures: a fixed message plus the
// underlying error text.
func RespondFailure(c *gin.Context, code int, message string, err error) {
	resp := JSONResponse{
		Status: false,
		Error:  message,
	}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(code, resp)
}
