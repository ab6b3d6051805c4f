package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/service"
	"github.com/kirinyoku/tableorder/internal/service/auth"
	"github.com/kirinyoku/tableorder/internal/session"
)

// issueSession writes the session cookie and echoes the session payload.
func issueSession(c *gin.Context, codec *session.Codec, status int, s session.Session) {
	token, exp, err := codec.Encode(s)
	if err != nil {
		respondErr(c, err)
		return
	}
	http.SetCookie(c.Writer, codec.Cookie(token, exp))
	c.JSON(status, s)
}

// @Summary  Sign up an owner with a new venue
// @Param    req body  SignupRequest true "payload"
// @Success  201  {object}  session.Session
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "email taken"
// @Router   /auth/signup [post]
func handleSignup(svcs *service.Services, codec *session.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		s, err := svcs.Auth.Signup(c.Request.Context(), auth.SignupInput{
			Email:     req.Email,
			Password:  req.Password,
			Name:      req.Name,
			VenueName: req.VenueName,
			Currency:  req.Currency,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		issueSession(c, codec, http.StatusCreated, s)
	}
}

// @Summary  Log in
// @Param    req body  LoginRequest true "payload"
// @Success  200  {object}  session.Session
// @Failure  401  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse "no role in venue"
// @Router   /auth/login [post]
func handleLogin(svcs *service.Services, codec *session.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		venueID := uuid.Nil
		if req.VenueID != "" {
			id, err := uuid.Parse(req.VenueID)
			if err != nil {
				badRequest(c, "invalid venue_id")
				return
			}
			venueID = id
		}
		s, err := svcs.Auth.Login(c.Request.Context(), req.Email, req.Password, venueID)
		if err != nil {
			respondErr(c, err)
			return
		}
		issueSession(c, codec, http.StatusOK, s)
	}
}

// @Summary  Log out
// @Success  204
// @Router   /auth/logout [post]
func handleLogout(codec *session.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		http.SetCookie(c.Writer, codec.ClearCookie())
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Current session
// @Success  200  {object}  session.Session
// @Failure  401  {object}  ErrorResponse
// @Router   /auth/me [get]
func handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, _ := staffSession(c)
		c.JSON(http.StatusOK, s)
	}
}

// @Summary  Venues the user holds a role in
// @Success  200  {array}  domain.VenueRole
// @Router   /auth/venues [get]
func handleMyVenues(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, _ := staffSession(c)
		roles, err := svcs.Auth.Venues(c.Request.Context(), s.User.ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, roles)
	}
}

// @Summary  Switch the active venue
// @Param    req body  SwitchVenueRequest true "payload"
// @Success  200  {object}  session.Session
// @Failure  403  {object}  ErrorResponse
// @Router   /auth/switch [post]
func handleSwitchVenue(svcs *service.Services, codec *session.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SwitchVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		venueID, err := uuid.Parse(req.VenueID)
		if err != nil {
			badRequest(c, "invalid venue_id")
			return
		}
		cur, _ := staffSession(c)
		s, err := svcs.Auth.SwitchVenue(c.Request.Context(), cur.User.ID, venueID)
		if err != nil {
			respondErr(c, err)
			return
		}
		issueSession(c, codec, http.StatusOK, s)
	}
}

// @Summary  Change password
// @Param    req body  ChangePasswordRequest true "payload"
// @Success  204
// @Failure  401  {object}  ErrorResponse "wrong current password"
// @Router   /auth/password [post]
func handleChangePassword(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		s, _ := staffSession(c)
		if err := svcs.Auth.ChangePassword(c.Request.Context(), s.User.ID, req.Current, req.New); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
