package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/osei222/schoolfees/apps/api/echo"
	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/comms"
	"github.com/osei222/schoolfees/core/fee"
	"github.com/osei222/schoolfees/core/report"
	"github.com/osei222/schoolfees/core/student"
	"github.com/osei222/schoolfees/core/user"
	"github.com/osei222/schoolfees/core/wallet"
	emailsvc "github.com/osei222/schoolfees/services/email"
	logsvc "github.com/osei222/schoolfees/services/logger"
	smssvc "github.com/osei222/schoolfees/services/sms"
	"github.com/osei222/schoolfees/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Fatal("Failed to close DB", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	var smsProvider core.SMSService
	if conf.Debug {
		smsProvider = smssvc.NewConsoleService()
	} else {
		smsProvider = smssvc.NewArkeselService(conf, logger)
	}

	policy, err := wallet.PolicyFromConfig(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading wallet policy: %v", err), err)
	}

	usrSvc := user.NewService(database.NewUserRepository(db), conf)
	feeSvc := fee.NewService(database.NewFeeRepository(db))
	studentSvc := student.NewService(database.NewStudentRepository(db), feeSvc)
	walletSvc := wallet.NewService(database.NewWalletRepository(db), policy)
	commsSvc := comms.NewService(database.NewCommsRepository(db), smsProvider, walletSvc, logger)
	reportSvc := report.NewService(studentSvc, feeSvc, walletSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			MailSvc:    mailSvc,
			StudentSvc: studentSvc,
			FeeSvc:     feeSvc,
			WalletSvc:  walletSvc,
			CommsSvc:   commsSvc,
			ReportSvc:  reportSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
