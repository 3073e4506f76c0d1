package common

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/valyala/fastjson"
)

const version = "1"

const (
	RejectBan  = "ban"
	RejectKick = "kick"
)

// Config holds everything read from flags, the JSON config file and the environment
type Config struct {
	CliCmd     string
	ConfigPath string
	OperatorID string // --user, only used by operator.add
	Debug      bool

	Token        string
	Database     string
	HTTPAddr     string
	DataDir      string
	RejectAction string
	CacheTTL     time.Duration
	EpochMs      uint64
}

var ErrUsage = errors.New("no command given")

func defaults() *Config {
	return &Config{
		Database:     "sentinel.sqlite3",
		DataDir:      "data",
		RejectAction: RejectBan,
		CacheTTL:     5 * time.Minute,
		EpochMs:      DiscordEpoch,
	}
}

// Load parses args (without the program name), then the JSON config file, then the environment.
// Later sources win
func Load(args []string) (*Config, error) {
	cfg := defaults()

	fs := pflag.NewFlagSet("sentinel", pflag.ContinueOnError)
	fs.StringVar(&cfg.ConfigPath, "config", "config/sentinel.json", "Path to the JSON config file")
	fs.StringVar(&cfg.CliCmd, "cmd", "", "The command to run:\n\tserver: runs the bot and the status api\n\tregister-only: syncs slash commands and exits\n\toperator.add: adds --user to the operator allow-list")
	fs.StringVar(&cfg.OperatorID, "user", "", "User id for operator.add")
	fs.BoolVar(&cfg.Debug, "debug", false, "Debug mode")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.CliCmd == "" {
		fmt.Fprintln(os.Stderr, "Version:", version, "\nBuilt with:", runtime.Version())
		fs.PrintDefaults()
		return nil, ErrUsage
	}

	if err := cfg.readFile(); err != nil {
		return nil, err
	}

	// A missing .env is fine, the variables may come from the real environment
	_ = godotenv.Load()
	cfg.readEnv()

	if cfg.RejectAction != RejectBan && cfg.RejectAction != RejectKick {
		return nil, errors.Errorf("reject_action must be %q or %q, got %q", RejectBan, RejectKick, cfg.RejectAction)
	}

	return cfg, nil
}

func (cfg *Config) readFile() error {
	data, err := os.ReadFile(cfg.ConfigPath)
	if os.IsNotExist(err) {
		log.WithFields(log.Fields{
			"path": cfg.ConfigPath,
		}).Warning("Config file not found, using defaults and environment")
		return nil
	} else if err != nil {
		return errors.Wrap(err, "read config")
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return errors.Wrap(err, "parse config "+cfg.ConfigPath)
	}

	if s := v.GetStringBytes("token"); s != nil {
		cfg.Token = string(s)
	}
	if s := v.GetStringBytes("database"); s != nil {
		cfg.Database = string(s)
	}
	if s := v.GetStringBytes("http_addr"); s != nil {
		cfg.HTTPAddr = string(s)
	}
	if s := v.GetStringBytes("data_dir"); s != nil {
		cfg.DataDir = string(s)
	}
	if s := v.GetStringBytes("reject_action"); s != nil {
		cfg.RejectAction = strings.ToLower(string(s))
	}
	if v.Exists("cache_ttl_seconds") {
		cfg.CacheTTL = time.Duration(v.GetInt("cache_ttl_seconds")) * time.Second
	}
	if v.Exists("epoch_ms") {
		cfg.EpochMs = v.GetUint64("epoch_ms")
	}
	return nil
}

func (cfg *Config) readEnv() {
	if tok, ok := os.LookupEnv("SENTINEL_TOKEN"); ok {
		cfg.Token = tok
	}
	if db, ok := os.LookupEnv("SENTINEL_DATABASE"); ok {
		cfg.Database = db
	}
}

// SetupLogging applies LOG_LEVEL, falling back to debug
func SetupLogging() {
	lvl, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		lvl = "debug"
	}
	ll, err := log.ParseLevel(lvl)
	if err != nil {
		ll = log.DebugLevel
	}
	log.SetLevel(ll)
}
