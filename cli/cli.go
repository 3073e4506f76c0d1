package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentinel/admin"
	"sentinel/common"
	"sentinel/gatekeeper"
	"sentinel/perms"
	"sentinel/slashbot"
	"sentinel/store"
	"sentinel/webserver"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const readyTimeout = 30 * time.Second

type serverStats struct {
	policy   *perms.Policy
	workflow *gatekeeper.Workflow
}

func (s serverStats) Operators() int            { return s.policy.Len() }
func (s serverStats) PendingReviews() int       { return s.workflow.Pending() }
func (s serverStats) Outcomes() map[string]int { return s.workflow.Outcomes() }

func newSession(cfg *common.Config) (*discordgo.Session, error) {
	if cfg.Token == "" {
		return nil, errors.New("no bot token, set token in the config file or SENTINEL_TOKEN")
	}

	discord, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, errors.Wrap(err, "create session")
	}
	discord.SyncEvents = false
	discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	if cfg.Debug {
		discord.LogLevel = discordgo.LogDebug
	}
	return discord, nil
}

// Server runs the bot until SIGINT, SIGQUIT or SIGTERM
func Server(cfg *common.Config) error {
	ctx := context.Background()

	backend, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer backend.Close()

	var lookups store.Store = backend
	if cfg.CacheTTL > 0 {
		lookups = store.NewCached(backend, cfg.CacheTTL)
	}

	policy, err := perms.Load(ctx, backend)
	if err != nil {
		return err
	}
	log.Info("Loaded ", policy.Len(), " operators")

	discord, err := newSession(cfg)
	if err != nil {
		return err
	}

	workflow := gatekeeper.New(lookups, gatekeeper.NewDiscordSink(discord, cfg.RejectAction), gatekeeper.Options{
		EpochMs:      cfg.EpochMs,
		RejectAction: cfg.RejectAction,
	})
	cmdInit := admin.CmdInit(admin.NewRegistrar(backend, policy))

	discord.AddHandler(func(s *discordgo.Session, m *discordgo.Ready) {
		defer common.Recover("ready")

		log.Info("Logged in as ", m.User.Username)
		if err := s.UpdateListeningStatus("new member joins"); err != nil {
			log.Warning("Could not set presence: ", err)
		}
		if err := slashbot.SetupSlash(s, cmdInit, true); err != nil {
			log.Error(err)
		}
	})

	discord.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		defer common.Recover("guild_member_add")

		state, err := workflow.OnJoin(ctx, m.Member)
		logger := log.WithFields(log.Fields{
			"guild": m.GuildID,
			"state": state.String(),
		})
		if err != nil {
			logger.Error("Join handling failed: ", err)
			return
		}
		logger.Debug("Join handled")
	})

	discord.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		defer common.Recover("interaction_create")

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			slashbot.SlashHandler(ctx, s, i.Interaction)
		case discordgo.InteractionMessageComponent:
			state, err := workflow.OnDecision(ctx, i.Interaction)
			if err != nil {
				log.WithFields(log.Fields{
					"guild": i.GuildID,
					"state": state.String(),
				}).Error("Decision handling failed: ", err)
			}
		}
	})

	if err := discord.Open(); err != nil {
		return errors.Wrap(err, "open gateway")
	}

	var web *webserver.Webserver
	if cfg.HTTPAddr != "" {
		web = webserver.StartWebserver(cfg.HTTPAddr, backend, serverStats{policy: policy, workflow: workflow})
	}

	// Channel for signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM)

	s := <-sigs
	log.Info("Going to exit gracefully due to signal ", s)

	// Close all connections
	if web != nil {
		if err := web.Close(); err != nil {
			log.Error(err)
		}
	}
	return discord.Close()
}

// RegisterOnly pushes the slash commands to Discord and exits
func RegisterOnly(cfg *common.Config) error {
	ctx := context.Background()

	backend, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer backend.Close()

	policy, err := perms.Load(ctx, backend)
	if err != nil {
		return err
	}

	discord, err := newSession(cfg)
	if err != nil {
		return err
	}

	ready := make(chan struct{}, 1)
	discord.AddHandler(func(s *discordgo.Session, m *discordgo.Ready) {
		select {
		case ready <- struct{}{}:
		default:
		}
	})

	if err := discord.Open(); err != nil {
		return errors.Wrap(err, "open gateway")
	}
	defer discord.Close()

	select {
	case <-ready:
	case <-time.After(readyTimeout):
		return errors.New("timed out waiting for ready")
	}

	return slashbot.SetupSlash(discord, admin.CmdInit(admin.NewRegistrar(backend, policy)), true)
}

// OperatorAdd puts cfg.OperatorID on the operator allow-list. A running bot only sees
// it after a restart
func OperatorAdd(cfg *common.Config) error {
	if cfg.OperatorID == "" {
		return errors.Wrap(common.ErrUsage, "operator.add needs --user")
	}

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.AddOperator(ctx, cfg.OperatorID); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user": cfg.OperatorID,
	}).Info("Operator added, restart the bot to apply")
	return nil
}
