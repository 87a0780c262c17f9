package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/server/response"
)

func (s *Server) handleGetUnreadNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		notifications, err := s.NotificationService.ListUnread(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "notifications retrieved successfully", http.StatusOK, notifications, nil)
	}
}

func (s *Server) handleMarkNotificationRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := userIDFromContext(c); !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		notificationID, err := strconv.ParseUint(c.Param("notificationID"), 10, 32)
		if err != nil {
			response.JSON(c, "invalid notification id", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		if err := s.NotificationService.MarkRead(uint(notificationID)); err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "notification marked as read", http.StatusOK, nil, nil)
	}
}
