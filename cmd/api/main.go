// Package main (in api-subfolder) provides launch of the HTTP boundary and the invocation router
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/elonniu/image-handler/internal/fetcher"
	"github.com/elonniu/image-handler/internal/kafka"
	"github.com/elonniu/image-handler/internal/mwlogger"
	"github.com/elonniu/image-handler/internal/service"
	"github.com/elonniu/image-handler/internal/storage"
	"github.com/elonniu/image-handler/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
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

	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к хранилищу
	strg := storage.NewImgStorage(appConfig, 10*time.Second)

	// ждем пока кафка раздуплится и создаем оба топика
	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitReady(broker, 5*time.Second)

	taskTopic := appConfig.GetString("KAFKA_TASK_TOPIC")
	resultTopic := appConfig.GetString("KAFKA_RESULT_TOPIC")
	kafka.InitTopics(ctx, broker, 10*time.Second, taskTopic, resultTopic)

	taskPub := wbfkafka.NewProducer([]string{broker}, taskTopic)
	resultPub := wbfkafka.NewProducer([]string{broker}, resultTopic)

	opTimeout := durationOrDefault(appConfig, "OP_TIMEOUT", 2*time.Minute)
	linkTTL := durationOrDefault(appConfig, "LINK_TTL", 7*24*time.Hour)
	maxParallel := intOrDefault(appConfig, "MAX_PARALLEL_JOBS", int64(runtime.NumCPU()))

	// создаем экземпляр сервиса
	ftch := fetcher.New(opTimeout)
	var svc JobAPIService = service.NewJobService(ftch, strg, taskPub, resultPub, linkTTL, opTimeout, maxParallel)

	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewJobHandler(svc)

	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/compress", handlers.Compress)

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия соединений кафки
	<-ctx.Done()

	shutdown(taskPub, resultPub)
	log.Println("Exiting app...")
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

func shutdown(pubs ...*wbfkafka.Producer) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	for _, pub := range pubs {
		if err := pub.Close(); err != nil {
			log.Println("Failed to close Kafka-producer:", err)
			continue
		}
	}
	log.Println("Kafka-producer connections closed.")
}
