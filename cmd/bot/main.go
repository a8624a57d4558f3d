package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openfieldlab/hashbot/internal/api"
	"github.com/openfieldlab/hashbot/internal/config"
	"github.com/openfieldlab/hashbot/internal/db"
	"github.com/openfieldlab/hashbot/internal/middleware"
	"github.com/openfieldlab/hashbot/internal/record"
	"github.com/openfieldlab/hashbot/internal/study"
	"github.com/openfieldlab/hashbot/internal/telegram"
)

func main() {
	printToken := flag.Bool("print-token", false, "mint an operator token for the export API and exit")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of the minted operator token")
	flag.Parse()

	if *printToken {
		tok, err := middleware.SignOperatorToken("operator", *tokenTTL)
		if err != nil {
			log.Fatalf("sign operator token: %v", err)
		}
		fmt.Println(tok)
		return
	}

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run owns every resource the process opens. Fatal conditions return an
// error instead of exiting directly so the response sink is always closed
// (and the sqlite WAL checkpointed) on the way out.
func run() error {
	app := config.FromEnv()
	studyCfg, err := config.LoadStudy(app.StudyPath)
	if err != nil {
		return fmt.Errorf("load study config: %w", err)
	}

	codes, err := study.NewCodeBook(studyCfg.CodePattern, studyCfg.Codes, studyCfg.CodeHashes)
	if err != nil {
		return fmt.Errorf("participant codes: %w", err)
	}

	sink, reader, closeSink, err := openSink(app)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSink(); cerr != nil {
			log.Printf("warning: close response sink: %v", cerr)
		}
	}()

	if app.TelegramToken == "" {
		return errors.New("HASHBOT_TELEGRAM_TOKEN is required")
	}
	messenger, err := telegram.NewMessenger(app.TelegramToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	controller := study.NewController(study.ControllerConfig{
		Logger:    sink,
		Messenger: messenger,
		Codes:     codes,
		Validator: study.Validator{MaxLength: studyCfg.MaxHashtagLength},
		Prompts:   studyCfg.Prompts,
		Messages:  studyCfg.Messages,
	})

	mux := http.NewServeMux()
	api.NewRouter(reader, app.Commit, app.BuildTime).Register(mux)
	go func() {
		log.Printf("hashbot ops server listening on %s", app.OpsAddr)
		if err := http.ListenAndServe(app.OpsAddr, mux); err != nil {
			// The bot keeps collecting without the ops surface.
			log.Printf("ops server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot := telegram.NewBot(messenger, controller, studyCfg.WithdrawEnabled)
	log.Printf("hashbot running: %d rounds, withdraw_enabled=%v", studyCfg.TotalRounds(), studyCfg.WithdrawEnabled)
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("telegram polling: %w", err)
	}
	log.Printf("hashbot shut down")
	return nil
}

// openSink selects the response sink: a sqlite path switches persistence
// from the CSV file to sqlite, importing any existing CSV rows once on
// first run. The returned close func is a no-op for the CSV sink.
func openSink(app config.App) (record.Logger, record.Reader, func() error, error) {
	if app.SQLitePath == "" {
		csvSink := record.NewCSVLogger(app.CSVPath)
		return csvSink, csvSink, func() error { return nil }, nil
	}
	sq, err := db.Open(app.SQLitePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open sqlite sink: %w", err)
	}
	if err := importCSVIfNeeded(app.CSVPath, sq); err != nil {
		if cerr := sq.Close(); cerr != nil {
			log.Printf("warning: close sqlite sink: %v", cerr)
		}
		return nil, nil, nil, fmt.Errorf("import csv responses: %w", err)
	}
	return sq, sq, sq.Close, nil
}
