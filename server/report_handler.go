package server

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/models"
	"github.com/greenearthng/greenloop/server/response"
	"github.com/greenearthng/greenloop/services"
)

const DefaultPageSize = 20

// handleSubmitReport accepts a multipart form: location, waste_type and
// amount fields plus an optional image. When an image is present it is
// sent through the classifier and stored on S3; a classification failure
// is logged and the submission proceeds unverified.
func (s *Server) handleSubmitReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		params := services.SubmitReportParams{
			ReportID:  uuid.New(),
			UserID:    userID,
			Location:  c.PostForm("location"),
			WasteType: c.PostForm("waste_type"),
			Amount:    c.PostForm("amount"),
		}

		fileHeader, err := c.FormFile("image")
		if err == nil && fileHeader != nil {
			file, err := fileHeader.Open()
			if err != nil {
				response.JSON(c, "unable to read image", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
				return
			}
			imageBytes, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				response.JSON(c, "unable to read image", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
				return
			}

			mimeType := fileHeader.Header.Get("Content-Type")
			verification, err := s.ClassifierService.Classify(c.Request.Context(), imageBytes, mimeType)
			if err != nil {
				log.Printf("classification failed for report %s: %v", params.ReportID, err)
			} else {
				params.Verification = verification
			}

			feedURL, thumbnailURL, err := s.MediaService.ProcessImageFile(fileHeader, userID, params.ReportID)
			if err != nil {
				response.JSON(c, "unable to store image", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
				return
			}
			params.ImageURL = feedURL
			params.ThumbnailURL = thumbnailURL
		}

		report, err := s.ReportService.SubmitReport(params)
		if err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}

		s.FeedHub.Broadcast(report)
		response.JSON(c, "report submitted successfully", http.StatusCreated, report, nil)
	}
}

func (s *Server) handleClaimTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		collectorID, ok := userIDFromContext(c)
		if !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		reportID, err := uuid.Parse(c.Param("reportID"))
		if err != nil {
			response.JSON(c, "invalid report id", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		var request models.ClaimTaskRequest
		if errList := decode(c, &request); errList != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errList)
			return
		}

		report, err := s.ReportService.ClaimTask(reportID, collectorID, request.Status, nil)
		if err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "task status updated successfully", http.StatusOK, report, nil)
	}
}

// handleVerifyCollection runs the second classification pass over the
// collection photo and, on success, moves the report to verified.
func (s *Server) handleVerifyCollection() gin.HandlerFunc {
	return func(c *gin.Context) {
		collectorID, ok := userIDFromContext(c)
		if !ok {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		reportID, err := uuid.Parse(c.Param("reportID"))
		if err != nil {
			response.JSON(c, "invalid report id", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		report, err := s.ReportService.GetReport(reportID)
		if err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			response.JSON(c, "collection image is required", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			response.JSON(c, "unable to read image", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		imageBytes, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			response.JSON(c, "unable to read image", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}

		collection, err := s.ClassifierService.VerifyCollection(c.Request.Context(), imageBytes, fileHeader.Header.Get("Content-Type"), report)
		if err != nil {
			log.Printf("collection verification failed for report %s: %v", reportID, err)
			response.JSON(c, "could not verify collection", http.StatusBadGateway, nil, errs.New("could not verify collection", http.StatusBadGateway))
			return
		}

		updated, err := s.ReportService.ClaimTask(reportID, collectorID, models.StatusVerified, collection)
		if err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "collection verified", http.StatusOK, gin.H{
			"report":       updated,
			"verification": collection,
		}, nil)
	}
}

func (s *Server) handleGetRecentReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryLimit(c, DefaultPageSize)
		reports, err := s.ReportService.ListRecentReports(limit)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "reports retrieved successfully", http.StatusOK, reports, nil)
	}
}

func (s *Server) handleGetReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		reportID, err := uuid.Parse(c.Param("reportID"))
		if err != nil {
			response.JSON(c, "invalid report id", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		report, err := s.ReportService.GetReport(reportID)
		if err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "report retrieved successfully", http.StatusOK, report, nil)
	}
}

func (s *Server) handleGetOpenTasks() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryLimit(c, DefaultPageSize)
		tasks, err := s.ReportService.ListOpenTasks(limit)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "tasks retrieved successfully", http.StatusOK, tasks, nil)
	}
}

func queryLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
