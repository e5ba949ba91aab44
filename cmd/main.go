package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"coin-alarm-telegram-bot/config"
	"coin-alarm-telegram-bot/internal/alarm"
	"coin-alarm-telegram-bot/internal/database"
	"coin-alarm-telegram-bot/internal/exchange"
	"coin-alarm-telegram-bot/internal/telegram"
	"coin-alarm-telegram-bot/lib/translation"
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	translation.Configure("locales", config.GetString("lang"))

	store, err := database.Open(config.GetString("database_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	loadMetrics(store)

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:             config.GetString("telegram_bot_token"),
		Debug:             config.GetBool("debug"),
		MessagesPerSecond: config.GetFloat64("send_rate"),
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	service := alarm.NewService(store, exchange.NewSources(), bot, alarm.Config{
		TickInterval:     config.GetDuration("tick_alarm_interval"),
		WhaleInterval:    config.GetDuration("whale_alarm_interval"),
		FetchTimeout:     config.GetDuration("fetch_timeout"),
		RecentTickLimit:  config.GetInt("recent_tick_limit"),
		SweepConcurrency: config.GetInt("sweep_concurrency"),
	})
	scheduler := service.Start()

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			saveMetrics(store)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		scheduler.Stop()
		saveMetrics(store)
		store.Close()
		log.Println("Metrics saved, shutting down...")
		os.Exit(0)
	}()

	if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
		log.Fatalf("Failed to start metrics and health server: %v", err)
	}
}

func setupLogging() {
	log.SetLevel(log.InfoLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting alarm bot...")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}

func loadMetrics(store *database.Store) {
	alarmsEvaluated, _ := store.GetMetric("alarms_evaluated")
	notificationsSent, _ := store.GetMetric("notifications_sent")

	alarm.AlarmsEvaluated.Add(alarmsEvaluated)
	alarm.NotificationsSent.Add(notificationsSent)

	log.Println("Metrics loaded from database.")
}

func saveMetrics(store *database.Store) {
	store.SaveMetric("alarms_evaluated", getMetricValue(alarm.AlarmsEvaluated))
	store.SaveMetric("notifications_sent", getMetricValue(alarm.NotificationsSent))

	log.Println("Metrics saved to database.")
}

func getMetricValue(metric prometheus.Collector) float64 {
	var metricValue float64
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Printf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		metricValue = metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		metricValue = metricProto.Gauge.GetValue()
	}
	return metricValue
}
