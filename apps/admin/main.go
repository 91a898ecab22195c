package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/user"
	emailsvc "github.com/trezcool/aula/services/email"
	logsvc "github.com/trezcool/aula/services/logger"
	"github.com/trezcool/aula/storage/kv"
	pgkv "github.com/trezcool/aula/storage/kv/postgres"
	"github.com/trezcool/aula/storage/records"
)

func main() {
	os.Exit(run())
}

func run() int {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger("ADMIN", conf)
	if err != nil {
		log.Printf("setting up logger: %v", err)
		return 1
	}
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(false)
	defer func() { _ = logger.Sync() }()

	// set up DB
	store, err := kv.Open(context.Background(), conf.Store)
	if err != nil {
		logger.Error(fmt.Sprintf("setting up store: %v", err), err)
		return 1
	}
	db := records.Open(store)
	defer func() { _ = db.Close() }()

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := commandLine{
		usrSvc:     user.NewService(records.NewUserRepository(db), mailSvc),
		validate:   validate,
		translator: translator,
	}
	if pg, ok := store.(*pgkv.Store); ok {
		cli.db = pg.DB()
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		return 1
	}
	return 0
}
