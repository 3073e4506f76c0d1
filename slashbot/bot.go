package slashbot

import (
	"context"
	"strings"
	"sync"
	"time"

	"sentinel/types"

	"github.com/bwmarrin/discordgo"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Discord drops interactions that are not answered within 3 seconds
const deferAfter = 2 * time.Second

var (
	mu               sync.RWMutex
	commandNameCache = make(map[string]string)
	commands         = make(map[string]types.SlashCommand)
)

// SetupSlash loads the command IR from cmdInit. When register is set the commands are
// also pushed to Discord: global ones in one bulk overwrite, server-bound ones per server
func SetupSlash(discord *discordgo.Session, cmdInit types.SlashCreator, register bool) error {
	commandsIr := cmdInit()

	var cmds []*discordgo.ApplicationCommand
	perServer := make(map[string][]*discordgo.ApplicationCommand)

	mu.Lock()
	for cmdName, v := range commandsIr {
		if v.Disabled {
			continue
		}

		commandNameCache[v.Name] = cmdName
		commands[cmdName] = v

		cmd := &discordgo.ApplicationCommand{
			Name:        v.Name,
			Description: v.Description,
			Options:     v.Options,
		}

		log.Info("Loading slash command " + cmdName + " with server of '" + v.Server + "'")

		if v.Server == "" {
			cmds = append(cmds, cmd)
		} else {
			perServer[v.Server] = append(perServer[v.Server], cmd)
		}
	}
	mu.Unlock()

	if !register {
		return nil
	}

	appID := discord.State.User.ID
	log.Info("Loading commands on Discord for ", discord.State.User.Username)
	synced, err := discord.ApplicationCommandBulkOverwrite(appID, "", cmds)
	if err != nil {
		return errors.Wrap(err, "cannot create commands")
	}
	for server, serverCmds := range perServer {
		if _, err := discord.ApplicationCommandBulkOverwrite(appID, server, serverCmds); err != nil {
			return errors.Wrap(err, "cannot create commands for server "+server)
		}
	}
	log.Infof("Synced %d commands", len(synced))
	log.Debug(spew.Sdump(synced))
	return nil
}

// SlashHandler dispatches application commands to their IR handler
func SlashHandler(ctx context.Context, discord *discordgo.Session, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	if i.Member == nil {
		SendIResponseEphemeral(discord, i, "This bot may only be used in a server!")
		return
	}

	appCmdData := i.ApplicationCommandData()

	mu.RLock()
	op := commandNameCache[appCmdData.Name]
	cmd, ok := commands[op]
	mu.RUnlock()

	if op == "" || !ok {
		return
	}

	if cmd.Server != "" && cmd.Server != i.GuildID {
		SendIResponseEphemeral(discord, i, "This command may not be run on this server")
		return
	}

	if cmd.Handler == nil {
		SendIResponse(discord, i, "Command not found?")
		return
	}

	r := newResponder(discord, i)
	timeout := time.AfterFunc(deferAfter, r.deferReply)
	defer timeout.Stop()

	reply := cmd.Handler(types.SlashContext{
		Context:     ctx,
		Discord:     discord,
		Interaction: i,
		AppCmdData:  &appCmdData,
		User:        i.Member.User,
	})

	if reply.Content != "" {
		r.send(reply.Content, reply.Ephemeral)
	}
}

// GetArg returns the trimmed value of a string option, or "" when it was not given
func GetArg(data *discordgo.ApplicationCommandInteractionData, name string) string {
	for _, v := range data.Options {
		if v.Name == name && v.Type == discordgo.ApplicationCommandOptionString {
			return strings.TrimSpace(v.StringValue())
		}
	}
	return ""
}
