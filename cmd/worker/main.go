package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/elonniu/image-handler/internal/fetcher"
	"github.com/elonniu/image-handler/internal/kafka"
	"github.com/elonniu/image-handler/internal/service"
	"github.com/elonniu/image-handler/internal/storage"
	"github.com/elonniu/image-handler/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/config"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// подключиться к хранилищу
	strg := storage.NewImgStorage(appConfig, 10*time.Second)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitReady(broker, 5*time.Second)

	// подключиться к кафке как читатель задач и писатель результатов
	queue := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	taskTopic := appConfig.GetString("KAFKA_TASK_TOPIC")
	resultTopic := appConfig.GetString("KAFKA_RESULT_TOPIC")
	groupID := appConfig.GetString("KAFKA_GROUPID")
	cons := wbfkafka.NewConsumer([]string{broker}, taskTopic, groupID)
	resultPub := wbfkafka.NewProducer([]string{broker}, resultTopic)

	opTimeout := durationOrDefault(appConfig, "OP_TIMEOUT", 2*time.Minute)
	linkTTL := durationOrDefault(appConfig, "LINK_TTL", 7*24*time.Hour)
	jobTimeout := durationOrDefault(appConfig, "JOB_TIMEOUT", 5*time.Minute)
	maxParallel := intOrDefault(appConfig, "MAX_PARALLEL_JOBS", int64(runtime.NumCPU()))

	// создаем экземпляр сервиса - слот паблишера задач воркеру не нужен, ставим заглушку
	ftch := fetcher.New(opTimeout)
	var svc JobWorkerService = service.NewJobService(ftch, strg, NoopPublisher{}, resultPub, linkTTL, opTimeout, maxParallel)

	// Listening to interruptions through context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cons.StartConsuming(ctx, queue, retryStrategy)

	// Собираем воедино все что нужно воркеру и запускаем его
	go worker.NewWorkerInstance(svc, queue, cons, jobTimeout).StartWorker(ctx)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(cons, resultPub)
	log.Println("Exiting worker...")
}

func durationOrDefault(cfg *config.Config, key string, def time.Duration) time.Duration {
	raw := cfg.GetString(key)
	if raw == "" {
		return def
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Incorrect duration in %s=%q, using default %v", key, raw, def)
		return def
	}
	return d
}

func intOrDefault(cfg *config.Config, key string, def int64) int64 {
	raw := cfg.GetString(key)
	if raw == "" {
		return def
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Incorrect number in %s=%q, using default %d", key, raw, def)
		return def
	}
	return n
}

func shutdown(cons *wbfkafka.Consumer, pub *wbfkafka.Producer) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connections:
	if err := cons.Close(); err != nil {
		log.Println("Failed to close Kafka-reader:", err)
	}
	log.Println("Kafka-consumer connection closed.")

	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
		return
	}
	log.Println("Kafka-producer connection closed.")
}
