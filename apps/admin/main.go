package main

import (
	"context"
	"log"
	"os"

	"github.com/campusflow/campusflow/core"
	mongodb "github.com/campusflow/campusflow/storage/mongo"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	db, err := mongodb.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close(context.Background()) }()
	errAndDie(db.Ping(context.Background()))
	errAndDie(mongodb.EnsureIndexes(context.Background(), db))

	cli := commandLine{
		usrRepo: mongodb.NewUserRepository(db),
		store:   db,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
