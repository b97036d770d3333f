package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentsphere/talentsphere/internal/core/ports"
)

type parseResumeRequest struct {
	Document string `json:"document" validate:"required"`
}

// ResumeHandler exposes the language-model resume parser.
type ResumeHandler struct {
	parser ports.ResumeParser
}

func NewResumeHandler(parser ports.ResumeParser) *ResumeHandler {
	return &ResumeHandler{parser: parser}
}

// Parse handles POST /v1/resumes/parse and returns the extracted JSON as-is.
//
// @Summary      Extract structured data from a resume
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      parseResumeRequest  true  "Resume text"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/resumes/parse [post]
func (h *ResumeHandler) Parse(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	var req parseResumeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	out, err := h.parser.Parse(c.Request().Context(), req.Document)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, out)
}
