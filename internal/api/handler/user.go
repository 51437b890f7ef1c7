package handler

import (
	"errors"
	"os"
	"time"

	"karmabot/internal/pkg"
	"karmabot/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupUser struct {
	container *do.Injector
}

func (gr *groupUser) Register(g *echo.Group) {
	g.GET("/stats", gr.Stats)
	g.POST("/daily", gr.ClaimDaily)
	g.POST("/referral", gr.LinkReferral)
	g.GET("/achievements", gr.Achievements)
}

// Me exchanges validated init data for a session token and the user record.
// A refCode query param on first contact links the referral.
func (gr *groupUser) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if refCode := c.QueryParam("refCode"); refCode != "" && user.IsNewUser {
		if inviterID := pkg.ParseReferrerID(refCode); inviterID != 0 {
			if err := serviceUser.LinkReferral(ctx, user, inviterID); err != nil {
				// a bad ref code never blocks login
				c.Logger().Warn(err)
			}
		}
	}

	claims := &services.CustomClaims{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"token": tokenString,
		"user":  user,
	}, nil)
}

func (gr *groupUser) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	stats, err := serviceUser.Stats(ctx, user.ID)
	return httpx.RestAbort(c, stats, err)
}

func (gr *groupUser) ClaimDaily(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	amount, err := serviceUser.ClaimDaily(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"amount": amount,
	}, nil)
}

func (gr *groupUser) LinkReferral(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var body struct {
		RefCode string `json:"ref_code"`
	}
	if err := c.Bind(&body); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	inviterID := pkg.ParseReferrerID(body.RefCode)
	if inviterID == 0 {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid ref code"), errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceUser.LinkReferral(ctx, user, inviterID)
	return httpx.RestAbort(c, nil, err)
}

func (gr *groupUser) Achievements(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceHabit, err := do.Invoke[*services.ServiceHabit](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	achievements, err := serviceHabit.Achievements(ctx, user.ID)
	return httpx.RestAbort(c, achievements, err)
}
