package main

import (
	"context"
	"fmt"

	"github.com/samber/do"
	tele "gopkg.in/telebot.v3"

	"karmabot/internal/datastore/redis_store"
	"karmabot/internal/services"
)

// commandNewChallenge opens a draft session; the following plain-text messages
// feed it step by step until the challenge is created.
func commandNewChallenge(c tele.Context) error {
	container, err := getContextContainer(c)
	if err != nil {
		return err
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return err
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](container)
	if err != nil {
		return err
	}

	ctx := context.Background()
	user, err := serviceUser.FindUserByID(ctx, c.Sender().ID)
	if err != nil {
		return c.Send("Use /start first.")
	}

	draft, err := serviceChallenge.StartDraft(ctx, user)
	if err != nil {
		return c.Send("⭐ Creating challenges is a premium feature. See /premium.")
	}

	return c.Send(draft.Prompt())
}

func handleDraftInput(c tele.Context) error {
	container, err := getContextContainer(c)
	if err != nil {
		return err
	}

	dbRedis, err := getContextRedis(c)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// plain text is only meaningful while a draft session is open
	if _, err := redis_store.GetChallengeDraft(ctx, dbRedis, c.Sender().ID); err != nil {
		return nil
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return err
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](container)
	if err != nil {
		return err
	}

	user, err := serviceUser.FindUserByID(ctx, c.Sender().ID)
	if err != nil {
		return nil
	}

	draft, challenge, err := serviceChallenge.AdvanceDraft(ctx, user, c.Text())
	if err != nil {
		if draft != nil {
			return c.Send(fmt.Sprintf("That does not fit. %s", draft.Prompt()))
		}
		return c.Send("Something went wrong, try /newchallenge again.")
	}

	if challenge != nil {
		return c.Send(fmt.Sprintf("✅ Challenge %q created! Share id %d so others can join.", challenge.Name, challenge.ID))
	}

	return c.Send(draft.Prompt())
}
