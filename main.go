package main

import (
	"os"

	"sentinel/cli"
	"sentinel/common"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func main() {
	common.SetupLogging()

	cfg, err := common.Load(os.Args[1:])
	if errors.Is(err, common.ErrUsage) {
		os.Exit(2)
	} else if err != nil {
		log.Fatal(err)
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	common.PanicDir = cfg.DataDir

	switch cfg.CliCmd {
	case "server":
		err = cli.Server(cfg)
	case "register-only":
		err = cli.RegisterOnly(cfg)
	case "operator.add":
		err = cli.OperatorAdd(cfg)
	default:
		log.Error("Unknown command ", cfg.CliCmd)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}
