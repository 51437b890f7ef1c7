package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"karmabot/internal/datastore"
	"karmabot/internal/models"
)

const (
	PaymentStatusPaid = "paid"
)

type ServicePayment struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	postgresDB *bun.DB

	serviceKarma  *ServiceKarma
	serviceConfig *ServiceConfig
}

func NewServicePayment(container *do.Injector) (*ServicePayment, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	serviceKarma, err := do.Invoke[*ServiceKarma](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServicePayment{container, db, postgresDB, serviceKarma, serviceConfig}, nil
}

// Price returns the Stars price for a SKU.
func (service *ServicePayment) Price(ctx context.Context, sku string) (int, error) {
	switch sku {
	case models.SKUPremium30d:
		return service.serviceConfig.GetIntConfig(ctx, CONFIG_PREMIUM_PRICE_STARS, PREMIUM_PRICE_STARS_DEFAULT)
	case models.SKUKarma100:
		return service.serviceConfig.GetIntConfig(ctx, CONFIG_KARMA_PACK_PRICE_STARS, KARMA_PACK_PRICE_STARS_DEFAULT)
	default:
		return 0, errorx.Wrap(errors.New("unknown sku"), errorx.Invalid)
	}
}

// OnPaymentSuccess records the payment and delivers the purchased goods.
func (service *ServicePayment) OnPaymentSuccess(ctx context.Context, userID int64, sku string, amount int) error {
	_, err := datastore.CreatePayment(ctx, service.postgresDB, &models.Payment{
		UserID:    userID,
		Amount:    amount,
		Payload:   sku,
		Status:    PaymentStatusPaid,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	switch sku {
	case models.SKUPremium30d:
		days, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_PREMIUM_DAYS, PREMIUM_DAYS_DEFAULT)
		if _, err := service.serviceKarma.GrantPremium(ctx, userID, days); err != nil {
			return err
		}
	case models.SKUKarma100:
		if _, _, err := service.serviceKarma.AddKarma(ctx, userID, KARMA_PACK_AMOUNT, models.KarmaActionShopBuy); err != nil {
			return err
		}
	default:
		return errorx.Wrap(errors.New("unknown sku"), errorx.Invalid)
	}

	log.Println("Payment delivered:", "user:", userID, "sku:", sku, "stars:", amount)

	return nil
}
