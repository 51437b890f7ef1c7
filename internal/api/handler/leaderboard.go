package handler

import (
	"karmabot/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) GetKarmaLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	items, err := serviceLeaderboard.Karma(ctx)
	return httpx.RestAbort(c, items, err)
}

func (gr *groupLeaderboard) GetReferralLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	items, err := serviceLeaderboard.Referral(ctx)
	return httpx.RestAbort(c, items, err)
}
