package utils

import (
	"github.com/gin-gonic/gin"
)

// Response = amplop standar semua endpoint. Aplikasi customer, staf, dan
// dashboard admin sama-sama ngecek success dulu sebelum baca data.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"` // null ga usah ikut dimunculin
}

func APIResponse(c *gin.Context, code int, success bool, message string, data interface{}) {
	c.JSON(code, Response{
		Success: success,
		Message: message,
		Data:    data,
	})
}
