package controller

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresvm/email-autosend/service"
	"github.com/andresvm/email-autosend/service/dto"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	sendOneErr  error
	sendBulkErr error
	saveErr     error
	pageErr     error
	clearErr    error

	savedPayload map[string]string
	pageArg      int
	limitArg     int
	cleared      bool
}

func (m *mockService) SendOne(user dto.User) (string, error) {
	if m.sendOneErr != nil {
		return "", m.sendOneErr
	}
	return "Email sent successfully to " + user.Name + " (" + user.Email + ")", nil
}

func (m *mockService) Dispatch(users []dto.User) <-chan service.Outcome {
	out := make(chan service.Outcome)
	close(out)
	return out
}

func (m *mockService) SendBulk(users []dto.User) (dto.BulkResults, string, error) {
	if m.sendBulkErr != nil {
		return dto.BulkResults{}, "", m.sendBulkErr
	}
	results := dto.BulkResults{Success: []dto.User{}, Failed: []dto.FailedUser{}}
	for _, u := range users {
		results.Success = append(results.Success, u)
	}
	return results, "Completed: 2 sent, 0 failed", nil
}

func (m *mockService) SaveEntry(data map[string]string) (dto.Entry, error) {
	if m.saveErr != nil {
		return dto.Entry{}, m.saveErr
	}
	m.savedPayload = data
	return dto.Entry{Id: 1, Data: data}, nil
}

func (m *mockService) GetPage(page, limit int) (dto.Page, error) {
	if m.pageErr != nil {
		return dto.Page{}, m.pageErr
	}
	m.pageArg = page
	m.limitArg = limit
	return dto.Page{Success: true, Page: page, Limit: limit, Items: []dto.Entry{}}, nil
}

func (m *mockService) ClearEntries() error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = true
	return nil
}

func (m *mockService) SubscribeProgress() chan interface{} {
	return make(chan interface{})
}

func (m *mockService) UnsubscribeProgress(ch chan interface{}) {
}

func newContext(method, target, body, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestGetHealthFunc(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", "", "")

	err := GetHealthFunc()(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","message":"Email sender API is running"}`, rec.Body.String())
}

func TestGetSendEmailFunc(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/send-email", `{"name":"Ana","email":"ana@x.com"}`, echo.MIMEApplicationJSON)

	err := GetSendEmailFunc(&mockService{})(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"message":"Email sent successfully to Ana (ana@x.com)"}`, rec.Body.String())
}

func TestGetSendEmailFuncInvalidPayload(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/send-email", `{"name":"Bob","email":"not-an-email"}`, echo.MIMEApplicationJSON)

	srv := &mockService{sendOneErr: service.NewInvalidPayloadError("Invalid email format")}
	err := GetSendEmailFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"success":false,"error":"Invalid email format"}`, rec.Body.String())
}

func TestGetSendEmailFuncTransportError(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/send-email", `{"name":"Ana","email":"ana@x.com"}`, echo.MIMEApplicationJSON)

	srv := &mockService{sendOneErr: errors.New("smtp down")}
	err := GetSendEmailFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"success":false,"error":"Error sending email","details":"smtp down"}`, rec.Body.String())
}

func TestGetSendBulkEmailsFunc(t *testing.T) {
	body := `{"users":[{"name":"Ana","email":"ana@x.com"},{"name":"Carl","email":"carl@x.com"}]}`
	c, rec := newContext(http.MethodPost, "/api/send-bulk-emails", body, echo.MIMEApplicationJSON)

	err := GetSendBulkEmailsFunc(&mockService{})(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"message":"Completed: 2 sent, 0 failed"`)
	require.Contains(t, rec.Body.String(), `"ana@x.com"`)
}

func TestGetSendBulkEmailsFuncEmptyUsers(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/send-bulk-emails", `{"users":[]}`, echo.MIMEApplicationJSON)

	srv := &mockService{sendBulkErr: service.NewInvalidPayloadError("A non-empty users array is required")}
	err := GetSendBulkEmailsFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUploadJsonFuncRawBody(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/upload-json", `{"Ana":"ana@x.com"}`, echo.MIMEApplicationJSON)

	srv := &mockService{}
	err := GetUploadJsonFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]string{"Ana": "ana@x.com"}, srv.savedPayload)
	require.Contains(t, rec.Body.String(), `"entry"`)
}

func TestGetUploadJsonFuncMultipart(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "contacts.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(`{"Ana":"ana@x.com","Bob":"bob@x.com"}`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-json", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	srv := &mockService{}
	err = GetUploadJsonFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, len(srv.savedPayload))
}

func TestGetUploadJsonFuncMultipartBadJson(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "contacts.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(`not json at all`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-json", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	err = GetUploadJsonFunc(&mockService{})(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUploadJsonFuncEmptyPayload(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/upload-json", "", echo.MIMEApplicationJSON)

	srv := &mockService{saveErr: service.NewInvalidPayloadError("No JSON file or body provided")}
	err := GetUploadJsonFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDataFuncDefaults(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/data", "", "")

	srv := &mockService{}
	err := GetDataFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, srv.pageArg)
	require.Equal(t, 20, srv.limitArg)
}

func TestGetDataFuncClampsParams(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/data?page=0&limit=1000", "", "")

	srv := &mockService{}
	err := GetDataFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, 1, srv.pageArg)
	require.Equal(t, 100, srv.limitArg)
}

func TestGetDataFuncError(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/data", "", "")

	srv := &mockService{pageErr: errors.New("disk gone")}
	err := GetDataFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetDeleteDataFunc(t *testing.T) {
	c, rec := newContext(http.MethodDelete, "/api/data", "", "")

	srv := &mockService{}
	err := GetDeleteDataFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, srv.cleared)
	require.JSONEq(t, `{"success":true,"message":"All data cleared"}`, rec.Body.String())
}

func TestGetDeleteDataFuncError(t *testing.T) {
	c, rec := newContext(http.MethodDelete, "/api/data", "", "")

	srv := &mockService{clearErr: errors.New("disk gone")}
	err := GetDeleteDataFunc(srv)(c)

	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
