package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
	"github.com/Aashish23092/ocr-idcard-extraction/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// multipartOverhead leaves room for form boundaries and small fields on top of
// the file size limit.
const multipartOverhead = 1 << 20

// IDCardExtractor is the part of service.IDCardService used by the handler.
type IDCardExtractor interface {
	Engine() string
	ExtractFromFile(ctx context.Context, fileData []byte, mimeType, password string) (*service.Extraction, error)
	ParseText(text string) *service.Extraction
}

// IDCardHandler handles identity card extraction requests
type IDCardHandler struct {
	idcardService IDCardExtractor
	maxFileSize   int64
	log           zerolog.Logger
}

// NewIDCardHandler creates a new IDCardHandler instance
func NewIDCardHandler(idcardService IDCardExtractor, maxFileSize int64, log zerolog.Logger) *IDCardHandler {
	return &IDCardHandler{
		idcardService: idcardService,
		maxFileSize:   maxFileSize,
		log:           log,
	}
}

// ExtractIDCard handles POST /extract and POST /api/v1/idcard/extract.
// It expects a multipart form with the scan in "file" and an optional PDF "password".
func (h *IDCardHandler) ExtractIDCard(c *gin.Context) {
	log := h.requestLogger(c)

	if h.maxFileSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+multipartOverhead)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendError(c, dto.ErrFileTooLarge)
			return
		}
		log.Debug().Err(err).Msg("no file in request")
		h.sendError(c, dto.ErrNoFile)
		return
	}

	req := &dto.IDCardExtractRequest{
		File:     file,
		Password: c.PostForm("password"),
	}
	if err := req.Validate(h.maxFileSize); err != nil {
		h.sendError(c, err)
		return
	}

	log.Info().
		Str("filename", file.Filename).
		Str("mime_type", req.MimeType).
		Int64("size", file.Size).
		Msg("processing identity card")

	reader, err := file.Open()
	if err != nil {
		h.sendError(c, err)
		return
	}
	defer reader.Close()

	fileData, err := io.ReadAll(reader)
	if err != nil {
		h.sendError(c, err)
		return
	}

	result, err := h.idcardService.ExtractFromFile(c.Request.Context(), fileData, req.MimeType, req.Password)
	if err != nil {
		h.sendError(c, err)
		return
	}

	log.Info().
		Str("source", result.Source).
		Int("fields", countFilled(result.Data)).
		Msg("identity card extracted")
	c.JSON(http.StatusOK, h.response(c, result))
}

// ParseText handles POST /api/v1/idcard/parse with a JSON body {"text": "..."}.
func (h *IDCardHandler) ParseText(c *gin.Context) {
	var req dto.TextParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorMessage(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be JSON with a \"text\" field")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.sendErrorMessage(c, http.StatusBadRequest, "TEXT_REQUIRED", "text is required")
		return
	}

	result := h.idcardService.ParseText(req.Text)
	log := h.requestLogger(c)
	log.Info().Int("fields", countFilled(result.Data)).Msg("text parsed")
	c.JSON(http.StatusOK, h.response(c, result))
}

func (h *IDCardHandler) response(c *gin.Context, result *service.Extraction) dto.IDCardExtractResponse {
	resp := dto.IDCardExtractResponse{
		RequestID: c.GetString(requestIDKey),
		Engine:    result.Engine,
		Source:    result.Source,
		Data:      result.Data,
	}
	if debug, _ := strconv.ParseBool(c.Query("debug")); debug {
		resp.RawText = result.Text
	}
	return resp
}

func (h *IDCardHandler) requestLogger(c *gin.Context) zerolog.Logger {
	return h.log.With().Str("request_id", c.GetString(requestIDKey)).Logger()
}

// sendError maps err to a status and a stable error code and writes the
// structured error response.
func (h *IDCardHandler) sendError(c *gin.Context, err error) {
	status, code := errorStatus(err)

	log := h.requestLogger(c)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("code", code).Msg("identity card request failed")

	h.sendErrorMessage(c, status, code, err.Error())
}

func (h *IDCardHandler) sendErrorMessage(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, dto.ErrNoFile):
		return http.StatusBadRequest, "FILE_REQUIRED"
	case errors.Is(err, dto.ErrUnsupportedMimeType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"
	case errors.Is(err, dto.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, dto.ErrTextTooShort):
		return http.StatusUnprocessableEntity, "TEXT_TOO_SHORT"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "RECOGNITION_TIMEOUT"
	case errors.Is(err, dto.ErrRateLimited):
		return http.StatusTooManyRequests, "RECOGNITION_RATE_LIMITED"
	case errors.Is(err, dto.ErrRecognitionUnavailable):
		return http.StatusBadGateway, "RECOGNITION_UNAVAILABLE"
	case errors.Is(err, dto.ErrUnexpectedShape):
		return http.StatusBadGateway, "RECOGNITION_BAD_RESPONSE"
	}
	return http.StatusInternalServerError, "IDCARD_EXTRACTION_FAILED"
}

func countFilled(data dto.IDCardData) int {
	n := 0
	for _, v := range data.Map() {
		if v != "" {
			n++
		}
	}
	return n
}
