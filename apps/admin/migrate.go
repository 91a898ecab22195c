package main

import (
	"context"

	"github.com/pressly/goose/v3"

	pgkv "github.com/trezcool/aula/storage/kv/postgres"
)

var gooseRunFunc = goose.RunContext // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoMigrate
	}
	goose.SetBaseFS(pgkv.Migrations())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRunFunc(context.Background(), args[0], cli.db, pgkv.MigrationsDir, args[1:]...)
}
