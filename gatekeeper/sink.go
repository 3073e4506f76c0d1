package gatekeeper

import "github.com/bwmarrin/discordgo"

// Sink is everything the workflow asks of Discord.
//
// The Resolve* and GetMember lookups return types.ErrNotFound when the entity does
// not exist; any other error is a platform fault
type Sink interface {
	PostMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)

	// RespondToInteraction is the first answer to an interaction
	RespondToInteraction(i *discordgo.Interaction, content string, ephemeral bool) error
	// ResolveControls answers a button press by rewriting the message the button is on
	ResolveControls(i *discordgo.Interaction, update *discordgo.InteractionResponseData) error
	// Followup posts in the alert's channel after the interaction was answered
	Followup(i *discordgo.Interaction, content string) error

	GrantRole(serverID, memberID, roleID string) error
	RemoveMember(serverID, memberID, reason string) error

	ResolveRole(serverID, roleID string) (*discordgo.Role, error)
	ResolveChannel(channelID string) (*discordgo.Channel, error)
	GetMember(serverID, memberID string) (*discordgo.Member, error)
}
