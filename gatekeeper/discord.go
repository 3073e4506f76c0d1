package gatekeeper

import (
	"net/http"

	"sentinel/common"
	"sentinel/slashbot"
	"sentinel/types"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// DiscordSink is the Sink backed by a live session. Lookups try the state cache
// before the REST api
type DiscordSink struct {
	Session      *discordgo.Session
	RejectAction string
}

func NewDiscordSink(s *discordgo.Session, rejectAction string) *DiscordSink {
	return &DiscordSink{Session: s, RejectAction: rejectAction}
}

func (d *DiscordSink) PostMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return d.Session.ChannelMessageSendComplex(channelID, msg)
}

func (d *DiscordSink) RespondToInteraction(i *discordgo.Interaction, content string, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return d.Session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (d *DiscordSink) ResolveControls(i *discordgo.Interaction, update *discordgo.InteractionResponseData) error {
	return d.Session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: update,
	})
}

func (d *DiscordSink) Followup(i *discordgo.Interaction, content string) error {
	return slashbot.SendFollowup(d.Session, i, content)
}

func (d *DiscordSink) GrantRole(serverID, memberID, roleID string) error {
	return d.Session.GuildMemberRoleAdd(serverID, memberID, roleID)
}

func (d *DiscordSink) RemoveMember(serverID, memberID, reason string) error {
	if d.RejectAction == common.RejectKick {
		return d.Session.GuildMemberDeleteWithReason(serverID, memberID, reason)
	}
	return d.Session.GuildBanCreateWithReason(serverID, memberID, reason, 0)
}

func (d *DiscordSink) ResolveRole(serverID, roleID string) (*discordgo.Role, error) {
	if role, err := d.Session.State.Role(serverID, roleID); err == nil {
		return role, nil
	}

	roles, err := d.Session.GuildRoles(serverID)
	if err != nil {
		return nil, notFoundOr(err, "fetch roles")
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, types.ErrNotFound
}

func (d *DiscordSink) ResolveChannel(channelID string) (*discordgo.Channel, error) {
	if channel, err := d.Session.State.Channel(channelID); err == nil {
		return channel, nil
	}

	channel, err := d.Session.Channel(channelID)
	if err != nil {
		return nil, notFoundOr(err, "fetch channel")
	}
	return channel, nil
}

func (d *DiscordSink) GetMember(serverID, memberID string) (*discordgo.Member, error) {
	if member, err := d.Session.State.Member(serverID, memberID); err == nil {
		return member, nil
	}

	member, err := d.Session.GuildMember(serverID, memberID)
	if err != nil {
		return nil, notFoundOr(err, "fetch member")
	}
	return member, nil
}

// notFoundOr maps a REST 404 to types.ErrNotFound and anything else to a platform fault
func notFoundOr(err error, msg string) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return types.ErrNotFound
	}
	return types.PlatformFault(err, msg)
}
