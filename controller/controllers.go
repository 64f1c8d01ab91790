package controller

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/andresvm/email-autosend/log"
	"github.com/andresvm/email-autosend/service"
	"github.com/andresvm/email-autosend/service/dto"
	"github.com/andresvm/email-autosend/util"
	"github.com/labstack/echo/v4"
)

// Health godoc
// @Summary Health check
// @Description Reports service liveness
// @Produce json
// @Success 200 {object} dto.Health
// @Router /health [get]
func GetHealthFunc() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, dto.Health{Status: "ok", Message: "Email sender API is running"})
	}
}

// SendEmail godoc
// @Summary Send email
// @Description Sends a single greeting email to the given recipient
// @Accept json
// @Produce json
// @Param user body dto.User true "Recipient"
// @Success 200 {object} dto.Ack
// @Failure 400 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Router /api/send-email [post]
func GetSendEmailFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := new(dto.User)
		if err := c.Bind(user); err != nil {
			return err
		}

		message, err := srv.SendOne(*user)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
			default:
				log.Error.Println(err)
				return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Error sending email", Details: err.Error()})
			}
		}

		return c.JSON(http.StatusOK, dto.Ack{Success: true, Message: message})
	}
}

// SendBulkEmails godoc
// @Summary Send bulk emails
// @Description Sends greeting emails to every user sequentially and reports per-recipient outcomes
// @Accept json
// @Produce json
// @Param request body dto.BulkRequest true "Users"
// @Success 200 {object} dto.BulkResponse
// @Failure 400 {object} dto.Error
// @Router /api/send-bulk-emails [post]
func GetSendBulkEmailsFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(dto.BulkRequest)
		if err := c.Bind(req); err != nil {
			return err
		}

		results, message, err := srv.SendBulk(req.Users)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
			default:
				log.Error.Println(err)
				return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Bulk send failed"})
			}
		}

		return c.JSON(http.StatusOK, dto.BulkResponse{Success: true, Message: message, Results: results})
	}
}

// UploadJson godoc
// @Summary Upload JSON
// @Description Appends one uploaded name-to-email mapping, sent as a multipart file field or a raw JSON body
// @Accept mpfd
// @Accept json
// @Produce json
// @Param file formData file false "JSON file"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} dto.Error
// @Router /api/upload-json [post]
func GetUploadJsonFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := map[string]string{}

		header, err := c.FormFile("file")
		if err == nil {
			file, err := header.Open()
			if err != nil {
				return err
			}
			defer file.Close()

			raw, err := io.ReadAll(file)
			if err != nil {
				return err
			}

			if err := json.Unmarshal(raw, &payload); err != nil {
				return c.JSON(http.StatusBadRequest, dto.Error{Error: "Invalid JSON file", Details: err.Error()})
			}
		} else {
			//not multipart, try the raw body
			if err := c.Bind(&payload); err != nil {
				return c.JSON(http.StatusBadRequest, dto.Error{Error: "No JSON file or body provided"})
			}
		}

		entry, err := srv.SaveEntry(payload)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
			default:
				log.Error.Println(err)
				return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Error saving JSON", Details: err.Error()})
			}
		}

		return c.JSON(http.StatusOK, dto.UploadResponse{Success: true, Entry: entry})
	}
}

// GetData godoc
// @Summary Get uploaded data
// @Description Returns one page of uploaded entries
// @Produce json
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size, clamped to [1,100]"
// @Success 200 {object} dto.Page
// @Failure 500 {object} dto.Error
// @Router /api/data [get]
func GetDataFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		page := util.ParseIntOr(c.QueryParam("page"), 1)
		if page < 1 {
			page = 1
		}
		limit := util.Clamp(util.ParseIntOr(c.QueryParam("limit"), 20), 1, 100)

		result, err := srv.GetPage(page, limit)
		if err != nil {
			log.Error.Println(err)
			return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Error reading data", Details: err.Error()})
		}

		return c.JSON(http.StatusOK, result)
	}
}

// DeleteData godoc
// @Summary Delete uploaded data
// @Description Clears the whole entry store
// @Produce json
// @Success 200 {object} dto.Ack
// @Failure 500 {object} dto.Error
// @Router /api/data [delete]
func GetDeleteDataFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := srv.ClearEntries(); err != nil {
			log.Error.Println(err)
			return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Error clearing data", Details: err.Error()})
		}

		return c.JSON(http.StatusOK, dto.Ack{Success: true, Message: "All data cleared"})
	}
}
