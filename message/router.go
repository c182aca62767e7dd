package message

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Handler     Handler
	Logger      watermill.LoggerAdapter
	RedisClient *redis.Client
}

type Router struct {
	*message.Router
}

func NewRouter(deps RouterDeps) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	addMiddlewares(router, deps.Logger)

	ep, err := cqrs.NewEventProcessorWithConfig(router, newEventProcessorConfig(deps.RedisClient, deps.Logger))
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	h := deps.Handler
	err = ep.AddHandlers(
		cqrs.NewEventHandler("send-registration-confirmation", h.SendRegistrationConfirmation),
		cqrs.NewEventHandler("send-cancellation-notice", h.SendCancellationNotice),
		cqrs.NewEventHandler("notify-event-cancelled", h.NotifyEventCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("adding event handlers: %w", err)
	}

	cp, err := cqrs.NewCommandProcessorWithConfig(router, newCommandProcessorConfig(deps.RedisClient, deps.Logger))
	if err != nil {
		return nil, fmt.Errorf("creating command processor: %w", err)
	}

	err = cp.AddHandlers(
		cqrs.NewCommandHandler("send-ticket-reminder", h.SendTicketReminder),
	)
	if err != nil {
		return nil, fmt.Errorf("adding command handlers: %w", err)
	}

	return &Router{router}, nil
}
