package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"auth-service/internal/domain"
	"auth-service/internal/service"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// CookieConfig controls attributes shared by both credential cookies.
type CookieConfig struct {
	Domain string
	Secure bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	tokens      service.TokenService
	cookies     CookieConfig
	allowOrigin string
	validate    *validator.Validate
	logger      *logrus.Logger
}

func NewHandler(users service.UserService, tokens service.TokenService, cookies CookieConfig, allowOrigin string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:       users,
		tokens:      tokens,
		cookies:     cookies,
		allowOrigin: allowOrigin,
		validate:    newValidator(),
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware(h.allowOrigin), errorHandler(h.logger))

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

// register validates the body, creates the user, persists a refresh record,
// issues both credentials as cookies and responds 201 with the new id.
// Any failure after validation is handed to errorHandler with no cookies set.
func (h *Handler) register(c *gin.Context) {
	logger := h.logger.WithField(requestIDKey, c.GetString(requestIDKey))

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// an unparseable body cannot be redacted, so only the decode error is logged
		errs := []FieldError{bodyError(err)}
		logger.WithField("errors", errs).Error("Invalid body passed during registration")
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	req.normalize()

	errs, err := validateRegister(h.validate, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if len(errs) > 0 {
		logger.WithFields(logrus.Fields{
			"body":   req.redacted(),
			"errors": errs,
		}).Error("Invalid field passed during registration")
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	logger.WithFields(logrus.Fields{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"email":     req.Email,
		"password":  redactedValue,
	}).Debug("New request to register a user")

	ctx := c.Request.Context()
	user, err := h.users.Create(ctx, service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	logger.Infof("User has been registered with user id %d", user.ID)

	payload := domain.TokenPayload{
		Subject: strconv.FormatInt(user.ID, 10),
		Role:    user.Role,
	}

	accessToken, err := h.tokens.GenerateAccessToken(payload)
	if err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.tokens.PersistRefreshToken(ctx, user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	refreshToken, err := h.tokens.GenerateRefreshToken(payload, record)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setCookie(c, accessTokenCookie, accessToken, h.tokens.AccessTTL())
	h.setCookie(c, refreshTokenCookie, refreshToken, h.tokens.RefreshTTL())
	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

func (h *Handler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(ttl/time.Second), "/", h.cookies.Domain, h.cookies.Secure, true)
}
