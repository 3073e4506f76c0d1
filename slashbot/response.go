package slashbot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Discord rejects message content longer than this many characters
const maxContent = 2000

// interactionAPI is the part of *discordgo.Session a responder talks to
type interactionAPI interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(i *discordgo.Interaction, options ...discordgo.RequestOption) error
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// responder answers one interaction exactly once. If the handler is slow the
// interaction is deferred first and the answer replaces the deferred placeholder
type responder struct {
	mu       sync.Mutex
	discord  interactionAPI
	i        *discordgo.Interaction
	deferred bool
	sent     bool
}

func newResponder(discord interactionAPI, i *discordgo.Interaction) *responder {
	return &responder{discord: discord, i: i}
}

func (r *responder) deferReply() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent || r.deferred {
		return
	}
	err := r.discord.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Error("Could not defer interaction: ", err)
		return
	}
	r.deferred = true
}

// truncate cuts content to maxContent characters without splitting a rune
func truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= maxContent {
		return content
	}
	log.Warning("Truncating response of length ", len(runes))
	return string(runes[:maxContent])
}

func (r *responder) send(content string, ephemeral bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent {
		return
	}
	r.sent = true

	content = truncate(content)

	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	switch {
	case r.deferred && ephemeral:
		// The deferred placeholder is public and a first followup would inherit that.
		// Once it is gone the followup keeps its own flags
		if err := r.discord.InteractionResponseDelete(r.i); err != nil {
			log.Error("Could not delete deferred response: ", err)
		}
		_, err := r.discord.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
			Content: content,
			Flags:   flags,
		})
		if err != nil {
			log.Error(err.Error())
		}
	case r.deferred:
		if _, err := r.discord.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{Content: &content}); err != nil {
			log.Error(err.Error())
		}
	default:
		err := r.discord.InteractionRespond(r.i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   flags,
			},
		})
		if err != nil {
			log.Error("An error has occurred in initial response: " + err.Error())
		}
	}
}

func SendIResponse(discord *discordgo.Session, i *discordgo.Interaction, content string) {
	newResponder(discord, i).send(content, false)
}

func SendIResponseEphemeral(discord *discordgo.Session, i *discordgo.Interaction, content string) {
	newResponder(discord, i).send(content, true)
}

// SendFollowup posts a message after the interaction has already been answered
func SendFollowup(discord *discordgo.Session, i *discordgo.Interaction, content string) error {
	_, err := discord.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: content,
	})
	return err
}
