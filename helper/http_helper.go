package helper

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"

	"publisher-platform/logger"
	"publisher-platform/models"
	"publisher-platform/services"
)

// HTTPHelper centralises response writing and DTO validation for both
// APIs, so every endpoint reports the same body shapes.
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

func NewHTTPHelper() *HTTPHelper {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	return &HTTPHelper{Validate: validate, Translator: translator}
}

// ValidateStruct runs the DTO through the validator and, on failure,
// writes a 400 with translated field-level detail. Returns false when
// the request was rejected.
func (u *HTTPHelper) ValidateStruct(c *gin.Context, value interface{}) bool {
	err := u.Validate.Struct(value)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		u.SendBadRequest(c, err.Error())
		return false
	}

	fields := map[string][]string{}
	translated := validationErrors.Translate(u.Translator)
	for _, fieldErr := range validationErrors {
		key := Underscore(fieldErr.StructField())
		fields[key] = append(fields[key], translated[fieldErr.Namespace()])
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "validation failed",
		"fields": fields,
	})
	return false
}

func (u *HTTPHelper) SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func (u *HTTPHelper) SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func (u *HTTPHelper) SendUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
}

func (u *HTTPHelper) SendForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{"error": message})
}

func (u *HTTPHelper) SendNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

// SendInternalError keeps fault detail in the server log; the response
// body stays generic.
func (u *HTTPHelper) SendInternalError(c *gin.Context, err error) {
	logger.Get().Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// SendServiceError maps the shared error taxonomy onto status codes.
// Anything unclassified is a 500 with detail confined to the log.
func (u *HTTPHelper) SendServiceError(c *gin.Context, err error) {
	var forbidden *models.ForbiddenError

	switch {
	case errors.Is(err, models.ErrNotFound):
		u.SendNotFound(c, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		u.SendUnauthorized(c, err.Error())
	case errors.As(err, &forbidden):
		u.SendForbidden(c, forbidden.Error())
	case errors.Is(err, models.ErrDuplicateUser),
		errors.Is(err, models.ErrRoleNotFound),
		errors.Is(err, models.ErrDuplicateRole):
		u.SendBadRequest(c, err.Error())
	default:
		u.SendInternalError(c, err)
	}
}

// Underscore converts a StructField name like "RoleName" to "role_name"
// for field-level error keys.
func Underscore(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
