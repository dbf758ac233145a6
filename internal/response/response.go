package response

import (
	"errors"
	"net/http"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Body is the envelope every endpoint responds with.
type Body struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Message: message, Data: data})
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Success: status < http.StatusBadRequest, Message: message})
}

func Paginated(c *gin.Context, data interface{}, p *Pagination) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data, Pagination: p})
}

// Error translates err into the failure envelope. Business errors keep their
// message; anything else is logged and hidden behind a generic 500.
func Error(c *gin.Context, log logger.ZapLogger, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindPersistence {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Body{Success: false, Message: "Internal server error"})
		return
	}

	body := Body{Success: false, Message: appErr.Message}

	var stockErr *apperror.StockError
	if errors.As(err, &stockErr) {
		body.Data = gin.H{
			"productId": stockErr.ProductID,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		}
	}

	c.AbortWithStatusJSON(appErr.Kind.StatusCode(), body)
}

// BadRequest reports a request that could not be bound.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Body{Success: false, Message: message})
}
