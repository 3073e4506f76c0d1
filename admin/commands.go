package admin

import (
	"strconv"

	"sentinel/slashbot"
	"sentinel/types"

	"github.com/bwmarrin/discordgo"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type AdminOp struct {
	InternalName string // Internal name for enums
	Description  string
	Handler      types.SlashHandler
	Server       string                                // Slash command server
	SlashOptions []*discordgo.ApplicationCommandOption // Slash command options
}

var registerOptions = []struct{ name, description string }{
	{"guild_id", "id of the server you want to register"},
	{"admin_role_id", "admin role id"},
	{"verified_role_id", "verified role id"},
	{"alert_channel_id", "alert channel id"},
}

// CmdInit builds the admin command IR for slashbot.SetupSlash
func CmdInit(registrar *Registrar) types.SlashCreator {
	return func() map[string]types.SlashCommand {
		commands := make(map[string]AdminOp)

		var options []*discordgo.ApplicationCommandOption
		for _, opt := range registerOptions {
			options = append(options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        opt.name,
				Description: opt.description,
				Required:    true,
			})
		}

		commands["REGISTER_SERVER"] = AdminOp{
			InternalName: "register_server",
			Description:  "register a server with the bot's database",
			SlashOptions: options,
			Handler: func(context types.SlashContext) types.SlashReply {
				return registerServer(context, registrar)
			},
		}

		log.Debug(spew.Sdump("Admin commands loaded: ", commands))
		return slashIr(commands)
	}
}

func slashIr(commands map[string]AdminOp) map[string]types.SlashCommand {
	commandsToRet := make(map[string]types.SlashCommand)
	for cmdName, v := range commands {
		commandsToRet[cmdName] = types.SlashCommand{
			CmdName:     cmdName,
			Name:        v.InternalName,
			Description: v.Description,
			Options:     v.SlashOptions,
			Server:      v.Server,
			Handler:     v.Handler,
		}
	}
	return commandsToRet
}

// canonicalID parses a snowflake given as text and returns it without padding or sign
func canonicalID(s string) (string, bool) {
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return "", false
	}
	return strconv.FormatUint(n, 10), true
}

func registerServer(context types.SlashContext, registrar *Registrar) types.SlashReply {
	unauthorized := types.SlashReply{Content: "you don't have permission to run this command.", Ephemeral: true}

	// Non-operators get the same reply whatever they typed
	if !registrar.policy.IsOperator(context.User.ID) {
		return unauthorized
	}

	ids := make([]string, len(registerOptions))
	for idx, opt := range registerOptions {
		raw := slashbot.GetArg(context.AppCmdData, opt.name)
		id, ok := canonicalID(raw)
		if !ok {
			return types.SlashReply{Content: "`" + raw + "` is not a valid id", Ephemeral: true}
		}
		ids[idx] = id
	}

	reg := types.ServerRegistration{
		ServerID:       ids[0],
		AdminRoleID:    ids[1],
		VerifiedRoleID: ids[2],
		AlertChannelID: ids[3],
	}

	outcome, err := registrar.Register(context.Context, context.User.ID, reg)
	if errors.Is(err, types.ErrUnauthorized) {
		return unauthorized
	} else if err != nil {
		log.WithFields(log.Fields{
			"guild": reg.ServerID,
		}).Error(err)
		return types.SlashReply{Content: "something went wrong while registering, try again.", Ephemeral: true}
	}

	switch outcome {
	case types.AlreadyRegistered:
		return types.SlashReply{Content: "the server `" + reg.ServerID + "` is already registered!"}
	}
	return types.SlashReply{Content: "server `" + reg.ServerID + "` registered successfully."}
}
