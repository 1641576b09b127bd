package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"gameghor/internal/config"
	"gameghor/internal/database"
	"gameghor/internal/models"
	"gameghor/internal/repositories"
	"gameghor/internal/server"
	"gameghor/internal/services"
	"gameghor/pkg/rabbitmq"
)

// application is the assembled storefront service.
type application struct {
	app *fiber.App
	mq  *rabbitmq.Client
}

// newApplication opens storage, connects the optional event broker and
// builds the HTTP app. A broker that cannot be reached is logged and the
// service runs without events.
func newApplication(cfg config.Config) (*application, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	var mqClient *rabbitmq.Client
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, order events disabled: %v", err)
			mqClient = nil
		} else {
			publisher = mqClient
		}
	}

	userRepo := repositories.NewGORMUserRepository(db)
	gameRepo := repositories.NewGORMGameRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	deps := server.Deps{
		Auth:   services.NewAuthService(userRepo, cfg.Auth),
		Games:  services.NewGameService(gameRepo),
		Orders: services.NewOrderService(orderRepo, publisher),
	}
	if cfg.RabbitMQ.Enabled {
		deps.Broker = mqClient
	}

	return &application{app: server.New(deps), mq: mqClient}, nil
}

// handleOrderEvent is the consumer side of the order queue: completed orders
// are queued for manual delivery to the buyer's email.
func handleOrderEvent(event models.OrderEvent) error {
	switch {
	case event.Type == models.EventOrderPlaced:
		log.Printf("New order %s awaiting payment check (txn %s)", event.OrderID, event.TransactionID)
	case event.Type == models.EventOrderStatusChanged && event.Status == models.StatusCompleted:
		log.Printf("Deliver game %s to %s (order %s)", event.GameID, event.EmailForDelivery, event.OrderID)
	case event.Type == models.EventOrderStatusChanged:
		log.Printf("Order %s %s, nothing to deliver", event.OrderID, event.Status)
	default:
		log.Printf("Ignoring order event of unknown type %q", event.Type)
	}
	return nil
}

func main() {
	cfg := config.Load(nil)

	a, err := newApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer func() {
		if err := a.mq.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}()

	if a.mq != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for orders...")
			if err := a.mq.ConsumeOrderEvents(handleOrderEvent); err != nil {
				log.Printf("RabbitMQ consumer stopped: %v", err)
			}
		}()
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := a.app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
