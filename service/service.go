package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Mamajin/Event-Reservation-sub000/config"
	"github.com/Mamajin/Event-Reservation-sub000/db"
	"github.com/Mamajin/Event-Reservation-sub000/http"
	"github.com/Mamajin/Event-Reservation-sub000/message"
	"github.com/Mamajin/Event-Reservation-sub000/notification"
	"github.com/Mamajin/Event-Reservation-sub000/organizing"
	"github.com/Mamajin/Event-Reservation-sub000/registration"
	"github.com/Mamajin/Event-Reservation-sub000/reminder"
)

type Service struct {
	msgRouter  *message.Router
	forwarder  *message.Forwarder
	scheduler  *reminder.Scheduler
	httpRouter *echo.Echo
	httpAddr   string
}

func New(
	cfg config.Config,
	logger watermill.LoggerAdapter,
	redisClient *redis.Client,
	dbConn *sqlx.DB,
	transport notification.Transport,
	clock clockwork.Clock,
) (*Service, error) {
	ticketRepo := db.NewTicketRepo(dbConn)
	eventRepo := db.NewEventRepo(dbConn)
	attendeeRepo := db.NewAttendeeRepo(dbConn)

	dispatcher := notification.NewDispatcher(transport, cfg.NotificationTimeout)
	ticketReminder := reminder.NewReminder(ticketRepo, eventRepo, attendeeRepo, dispatcher)

	msgRouter, err := message.NewRouter(message.RouterDeps{
		Handler:     message.NewHandler(ticketRepo, eventRepo, attendeeRepo, dispatcher, ticketReminder),
		Logger:      logger,
		RedisClient: redisClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	fwd, err := message.NewForwarder(dbConn, redisClient, logger)
	if err != nil {
		return nil, fmt.Errorf("creating forwarder: %w", err)
	}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}
	decoratedPublisher := log.CorrelationPublisherDecorator{Publisher: publisher}

	commandBus, err := message.NewCommandBus(decoratedPublisher, logger)
	if err != nil {
		return nil, fmt.Errorf("creating command bus: %w", err)
	}

	job := reminder.NewJob(ticketRepo, message.NewReminderQueue(commandBus, clock), clock, cfg.Reminder.Location)
	scheduler, err := reminder.NewScheduler(job, cfg.Reminder.Cron, clock, cfg.Reminder.Location)
	if err != nil {
		return nil, fmt.Errorf("creating reminder scheduler: %w", err)
	}

	registrationService := registration.NewService(db.NewRegistrationStore(dbConn, logger), clock, nil)
	organizingService := organizing.NewService(db.NewOrganizingStore(dbConn, logger), clock)

	httpRouter := http.NewRouter(registrationService, organizingService)

	return &Service{
		msgRouter:  msgRouter,
		forwarder:  fwd,
		scheduler:  scheduler,
		httpRouter: httpRouter,
		httpAddr:   cfg.HTTPAddr,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running messaging router: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := s.forwarder.Run(runCtx); err != nil {
			return fmt.Errorf("running forwarder: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-s.msgRouter.Running()

		if err := s.scheduler.Run(runCtx); err != nil {
			return fmt.Errorf("running reminder scheduler: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		// Wait for message router
		<-s.msgRouter.Running()

		logrus.WithField("addr", s.httpAddr).Info("Starting HTTP server...")
		err := s.httpRouter.Start(s.httpAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")

	return nil
}
