package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/qubeio/microbees/authctx"
	"github.com/qubeio/microbees/directory"
	apperrors "github.com/qubeio/microbees/errors"
	"github.com/qubeio/microbees/logger"
	"github.com/qubeio/microbees/server/middleware"
	"github.com/qubeio/microbees/token"
)

const meterName = "github.com/qubeio/microbees/server"

// UserInfoResponse echoes the registration payload back to the caller using
// the public API field names.
type UserInfoResponse struct {
	FirstName string `json:"name"`
	LastName  string `json:"lastName"`
	Email     string `json:"mailId"`
}

// Handler carries the route handlers and their collaborators.
type Handler struct {
	directory *directory.Service
	codec     *token.Codec
	log       *logger.Logger

	tokensIssued metric.Int64Counter
}

// NewHandler creates the route handler set.
func NewHandler(dir *directory.Service, codec *token.Codec, log *logger.Logger) *Handler {
	h := &Handler{
		directory: dir,
		codec:     codec,
		log:       log.WithComponent("handler"),
	}
	h.tokensIssued, _ = otel.Meter(meterName).Int64Counter("tokens.issued",
		metric.WithDescription("Access tokens issued since process start"),
	)
	return h
}

// RegisterRoutes mounts the API. The authentication gate runs on every
// route; userInfo and token are on the permit-list, everything else requires
// an authenticated identity.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	engine.Use(middleware.Auth(h.codec, h.directory, h.log))

	public := engine.Group("/v1/microBees")
	public.POST("/userInfo", h.createUser)
	public.DELETE("/userInfo", h.deleteUser)
	public.POST("/token", h.createToken)

	protected := engine.Group("/v1/microBees")
	protected.Use(middleware.RequireAuth())
	protected.GET("/me", h.me)

	// Unmatched paths are outside the permit-list, so they still demand an
	// authenticated identity before admitting the path does not exist.
	engine.NoRoute(func(c *gin.Context) {
		if _, ok := authctx.Get(c.Request.Context()); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		RespondWithError(c, apperrors.NotFound("route"))
	})
}

// createUser registers a new user record in the tenant given by the query
// parameter. Unauthenticated by design: this is the sign-up path.
func (h *Handler) createUser(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var req directory.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBindingError(c, err)
		return
	}

	user, err := h.directory.Register(c.Request.Context(), tenantID, req)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserInfoResponse{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	})
}

// deleteUser removes the user with the given email from the tenant.
func (h *Handler) deleteUser(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		RespondWithError(c, apperrors.MissingField("email"))
		return
	}

	if err := h.directory.DeleteByEmail(c.Request.Context(), tenantID, email); err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}

// createToken mints a signed access token for the user matching the
// presented name and email within the tenant. A lookup miss is a 401, never
// a 404, so the endpoint cannot be used to probe which users exist.
func (h *Handler) createToken(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var req directory.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBindingError(c, err)
		return
	}

	user, err := h.directory.Login(c.Request.Context(), tenantID, req)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	accessToken, err := h.codec.Issue(user.ID, tenantID)
	if err != nil {
		h.log.Error("Failed to sign token", logger.ErrorFields("issue", err))
		RespondWithError(c, apperrors.Internal(err))
		return
	}
	if h.tokensIssued != nil {
		h.tokensIssued.Add(c.Request.Context(), 1,
			metric.WithAttributes(attribute.String("tenant", tenantID)))
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

// me returns the authenticated caller's record.
func (h *Handler) me(c *gin.Context) {
	id, err := authctx.GetOrError(c.Request.Context())
	if err != nil {
		RespondWithError(c, apperrors.Unauthorized(""))
		return
	}

	user, err := h.directory.FindByID(c.Request.Context(), id.TenantID, id.UserID)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// requireTenantID extracts the mandatory tenantId query parameter.
func requireTenantID(c *gin.Context) (string, bool) {
	tenantID := strings.TrimSpace(c.Query("tenantId"))
	if tenantID == "" {
		RespondWithError(c, apperrors.MissingField("tenantId"))
		return "", false
	}
	return tenantID, true
}
