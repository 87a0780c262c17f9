package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes the standard response envelope. errs may be a single error
// or a slice of errors collected by binding.
func JSON(c *gin.Context, message string, status int, data interface{}, errs interface{}) {
	responsedata := gin.H{
		"message": message,
		"data":    data,
		"errors":  errorMessages(errs),
		"status":  http.StatusText(status),
	}

	c.JSON(status, responsedata)
}

func errorMessages(errs interface{}) interface{} {
	switch v := errs.(type) {
	case nil:
		return nil
	case error:
		return v.Error()
	case []error:
		msgs := make([]string, 0, len(v))
		for _, err := range v {
			msgs = append(msgs, err.Error())
		}
		return msgs
	default:
		return v
	}
}
