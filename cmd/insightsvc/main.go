package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	config "github.com/avvvet/poker-ledger/configs"
	"github.com/avvvet/poker-ledger/internal/comm"
	"github.com/avvvet/poker-ledger/internal/insight"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/broker"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/db"
	nats "github.com/avvvet/poker-ledger/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "insight"

// every replica joins the same group so each game is enriched once
const queueGroup = "insight-enrichers"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	settings, err := config.ParseSettings()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME+"_service_"+instanceId, settings.LogFolder)

	ctx := context.Background()

	gateway, closeCache := insight.FromSettings(ctx, settings)
	defer closeCache()
	if !gateway.Enabled() {
		log.Warn("insight generation disabled, recorded games will be acknowledged without analysis")
	}

	ledger, err := db.Open(ctx, settings)
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}
	defer ledger.Close()

	n, err := nats.Connect(SERVICE_NAME+"_service_"+instanceId, settings.NatsURL, settings.NatsToken)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(1)
	}
	defer n.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	b := broker.NewBroker(n.Conn, instanceId)
	enricher := &broker.Enricher{
		Ledger:    ledger,
		Gateway:   gateway,
		MaxTokens: settings.InsightMaxToken,
	}

	sub, err := b.QueueSubscribe(comm.SubjectLedgerEvents, queueGroup, enricher.HandleMessage)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(1)
	}
	log.Infof("%s service listening on %s", SERVICE_NAME, comm.SubjectLedgerEvents)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	if err := sub.Unsubscribe(); err != nil {
		log.Warnf("unsubscribe: %s", err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
