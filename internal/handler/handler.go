package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodshare/internal/auth"
	"foodshare/internal/config"
	"foodshare/internal/food"
)

// Handler exposes the food-sharing HTTP surface over the domain service.
type Handler struct {
	svc *food.Service
	cfg config.App
}

func New(svc *food.Service, cfg config.App) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// Routes registers all application routes. Token-gated routes go through the
// session-cookie middleware.
func (h *Handler) Routes(r *gin.Engine) {
	r.POST("/jwt", h.IssueToken)
	r.POST("/logout", h.Logout)

	r.GET("/all-foods", h.ListFoods)
	r.GET("/foods", h.AllFoods)
	r.GET("/featured-foods", h.FeaturedFoods)

	protected := r.Group("/", auth.CookieAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	protected.GET("/request-foods", h.MyClaims)
	protected.GET("/all-foods/:id", h.GetFood)
	protected.GET("/manage-my-foods", h.MyFoods)
	protected.POST("/all-foods", h.CreateFood)
	protected.POST("/request-foods", h.SubmitClaim)
	protected.PATCH("/all-foods/:id", h.UpdateFood)
	protected.DELETE("/all-foods/:id", h.DeleteFood)
}

// ---------- Session ----------

type identityPayload struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// IssueToken mints a session token for the supplied identity and delivers it
// via the http-only `token` cookie.
func (h *Handler) IssueToken(c *gin.Context) {
	var payload identityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := auth.Issue(payload.Email, payload.Name, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.TokenTTL)
	if err != nil {
		log.Printf("token issue failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	auth.SetSessionCookie(c, token, h.cfg.TokenTTL, h.cfg.Production())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the session cookie. The presented token is not validated.
func (h *Handler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c, h.cfg.Production())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ---------- Public listing reads ----------

// ListFoods serves the filtered/sorted listing view.
func (h *Handler) ListFoods(c *gin.Context) {
	_, availableOnly := c.GetQuery("available")
	filter := food.ListingFilter{
		AvailableOnly: availableOnly,
		Search:        c.Query("search"),
		Sort:          c.Query("sort"),
	}
	foods, err := h.svc.ListFoods(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(foods))
}

// AllFoods serves the full unfiltered listing set.
func (h *Handler) AllFoods(c *gin.Context) {
	foods, err := h.svc.ListFoods(c.Request.Context(), food.ListingFilter{})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(foods))
}

// FeaturedFoods serves the top-6 available listings by quantity.
func (h *Handler) FeaturedFoods(c *gin.Context) {
	foods, err := h.svc.FeaturedFoods(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(foods))
}

// ---------- Authenticated reads ----------

// requesterEmail enforces that the email query parameter names the
// authenticated principal, not just whoever the caller asks about.
func requesterEmail(c *gin.Context) (string, bool) {
	claims, ok := auth.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
		return "", false
	}
	email := c.Query("email")
	if email != claims.Email {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return "", false
	}
	return email, true
}

// MyClaims returns the caller's submitted claims.
func (h *Handler) MyClaims(c *gin.Context) {
	email, ok := requesterEmail(c)
	if !ok {
		return
	}
	claims, err := h.svc.ClaimsByRequester(c.Request.Context(), email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if claims == nil {
		claims = []food.Claim{}
	}
	c.JSON(http.StatusOK, claims)
}

// GetFood returns a single listing by id.
func (h *Handler) GetFood(c *gin.Context) {
	listing, err := h.svc.GetFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// MyFoods returns the caller's own listings, newest first.
func (h *Handler) MyFoods(c *gin.Context) {
	email, ok := requesterEmail(c)
	if !ok {
		return
	}
	foods, err := h.svc.ListFoodsByDonator(c.Request.Context(), email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(foods))
}

// ---------- Writes ----------

// CreateFood inserts a new listing and mirrors the store acknowledgement.
func (h *Handler) CreateFood(c *gin.Context) {
	var listing food.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.svc.CreateFood(c.Request.Context(), listing)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": created.ID})
}

// SubmitClaim runs the claim workflow for the authenticated caller.
func (h *Handler) SubmitClaim(c *gin.Context) {
	claims, ok := auth.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
		return
	}
	var claim food.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.svc.SubmitClaim(c.Request.Context(), claims.Email, claim)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": created.ID})
}

// UpdateFood updates the mutable fields of the caller's own listing.
func (h *Handler) UpdateFood(c *gin.Context) {
	claims, ok := auth.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
		return
	}
	var upd food.ListingUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.UpdateFood(c.Request.Context(), c.Param("id"), claims.Email, upd); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "matchedCount": 1, "modifiedCount": 1})
}

// DeleteFood removes a listing by id. Deleting an absent id reports zero
// matches rather than an error.
func (h *Handler) DeleteFood(c *gin.Context) {
	n, err := h.svc.DeleteFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "deletedCount": n})
}

// ---------- Error mapping ----------

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, food.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, food.ErrIdentityMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	case errors.Is(err, food.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	case errors.Is(err, food.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	case errors.Is(err, food.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Already requested"})
	default:
		log.Printf("store operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func emptyIfNil(foods []food.Listing) []food.Listing {
	if foods == nil {
		return []food.Listing{}
	}
	return foods
}
