package handlers

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every API error
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Session interface{} `json:"session,omitempty"`
}

func respondError(c *gin.Context, status int, errCode, message, code string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: errCode, Message: message, Code: code})
}
