package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-orders.git/internal/checkout"
	"github.com/ariefcatur/go-shop-orders.git/internal/config"
	"github.com/ariefcatur/go-shop-orders.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/lifecycle"
	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/ariefcatur/go-shop-orders.git/internal/shop"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: placed, status, delivered (topic per event)
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderStatus, 1024)
	pStatus.Start(ctx)
	pDelivered := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderDelivered, 1024)
	pDelivered.Start(ctx)

	repo := &shop.Repo{DB: db}

	co := &checkout.Service{
		Store:       repo,
		Redis:       rdb,
		Producer:    pPlaced,
		ServiceName: cfg.ServiceName,
	}
	lc := &lifecycle.Service{
		Store:       repo,
		Redis:       rdb,
		Producer:    pStatus,
		ServiceName: cfg.ServiceName,
	}
	// notification hook: tepat satu kali per transisi ->Delivered
	lc.OnDelivered = func(ctx context.Context, orderID, userRef string) {
		ev := shop.Envelope{
			EventID:       uuid.NewString(),
			EventType:     shop.EventOrderDelivered,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      cfg.ServiceName,
			CorrelationID: orderID,
			Payload:       kafkax.MustMarshal(shop.OrderDeliveredPayload{OrderID: orderID, UserRef: userRef}),
		}
		pDelivered.Publish(shop.PartitionKey(orderID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderDelivered)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	router := httpx.NewRouter()
	h := &httpx.ShopHandler{Checkout: co, Lifecycle: lc, Catalog: repo, Redis: rdb}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range []*kafkax.Producer{pPlaced, pStatus, pDelivered} {
		p.Close() // tutup inbox -> flush & close writer
	}
	cancel()
	for _, p := range []*kafkax.Producer{pPlaced, pStatus, pDelivered} {
		p.WaitClosed() // drain
	}
}
