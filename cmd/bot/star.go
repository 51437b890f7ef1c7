package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"karmabot/internal/datastore/redis_store"
	"karmabot/internal/models"
	"karmabot/internal/services"

	"github.com/google/uuid"
	"github.com/samber/do"
	tele "gopkg.in/telebot.v3"
)

// Stars-priced shop: premium and karma packs. The invoice payload carries an
// id that maps back to the SKU in redis, never the SKU itself.
func handleStarCommands(b *tele.Bot) {
	b.Handle("/premium", func(c tele.Context) error {
		return sendInvoice(b, c, models.SKUPremium30d, "Premium (30 days)", "Double karma on every credit for 30 days")
	})

	b.Handle("/shop", func(c tele.Context) error {
		return sendInvoice(b, c, models.SKUKarma100, "Karma pack", "An instant +100 karma boost")
	})

	b.Handle(tele.OnCheckout, func(c tele.Context) error {
		dbRedis, err := getContextRedis(c)
		if err != nil {
			return err
		}

		query := c.PreCheckoutQuery()
		if _, err := redis_store.GetInvoiceRecord(context.Background(), dbRedis, query.Payload); err != nil {
			return err
		}

		return b.Accept(query)
	})

	b.Handle(tele.OnPayment, func(c tele.Context) error {
		container, err := getContextContainer(c)
		if err != nil {
			return err
		}

		dbRedis, err := getContextRedis(c)
		if err != nil {
			return err
		}

		payment := c.Message().Payment
		if payment == nil {
			return fmt.Errorf("missing payment")
		}

		record, err := redis_store.GetInvoiceRecord(context.Background(), dbRedis, payment.Payload)
		if err != nil {
			return err
		}

		servicePayment, err := do.Invoke[*services.ServicePayment](container)
		if err != nil {
			return err
		}

		err = servicePayment.OnPaymentSuccess(context.Background(), c.Sender().ID, record.SKU, payment.Total)
		if err != nil {
			log.Println("payment delivery failed:", "user:", c.Sender().ID, err)
			return c.Send("⚠️ Payment received but delivery failed. Support has been notified.")
		}

		if record.MessageID != "" {
			//nolint:errcheck
			b.Delete(&tele.StoredMessage{MessageID: record.MessageID, ChatID: record.ChatID})
		}

		return c.Send("✅ Purchase complete. Enjoy!")
	})
}

func sendInvoice(b *tele.Bot, c tele.Context, sku, title, description string) error {
	container, err := getContextContainer(c)
	if err != nil {
		return err
	}

	dbRedis, err := getContextRedis(c)
	if err != nil {
		return err
	}

	servicePayment, err := do.Invoke[*services.ServicePayment](container)
	if err != nil {
		return err
	}

	price, err := servicePayment.Price(context.Background(), sku)
	if err != nil {
		return c.Send(fmt.Sprintf("error %s", err.Error()))
	}

	invoiceID := uuid.New().String()
	invoice := &tele.Invoice{
		Title:       title,
		Description: description,
		Payload:     invoiceID,
		Currency:    "XTR",
		Prices: []tele.Price{
			{
				Label:  title,
				Amount: price,
			},
		},
	}

	message, err := invoice.Send(b, c.Recipient(), nil)
	if err != nil {
		return c.Send(fmt.Sprintf("create invoice error %s", err.Error()))
	}

	if message == nil {
		return c.Send("create invoice message error")
	}

	return redis_store.SetInvoiceRecord(context.Background(), dbRedis, invoiceID, &redis_store.InvoiceRecord{
		SKU:       sku,
		UserID:    c.Sender().ID,
		MessageID: strconv.Itoa(message.ID),
		ChatID:    message.Chat.ID,
	})
}
