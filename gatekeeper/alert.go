package gatekeeper

import (
	"fmt"
	"strings"

	"sentinel/common"
	"sentinel/types"

	"github.com/bwmarrin/discordgo"
)

const (
	customIDPrefix = "sentinel"
	embedColorJoin = 0xff0000
)

// customID is what a decision button sends back: sentinel:<decision>:<review id>
func customID(d types.Decision, reviewID string) string {
	return customIDPrefix + ":" + d.String() + ":" + reviewID
}

func parseCustomID(id string) (types.Decision, string, bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[2] == "" {
		return 0, "", false
	}
	d, ok := types.ParseDecision(parts[1])
	if !ok {
		return 0, "", false
	}
	return d, parts[2], true
}

func decisionButtons(reviewID string, rejectVerb string, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "yes, give them access to the server",
					Style:    discordgo.SuccessButton,
					CustomID: customID(types.DecisionApprove, reviewID),
					Disabled: disabled,
				},
				discordgo.Button{
					Label:    "no, " + rejectVerb + " them!",
					Style:    discordgo.DangerButton,
					CustomID: customID(types.DecisionReject, reviewID),
					Disabled: disabled,
				},
			},
		},
	}
}

func joinAlert(review JoinReview, user *discordgo.User, adminRole *discordgo.Role, created int64, rejectVerb string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: adminRole.Mention(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Roles: []string{adminRole.ID},
		},
		Embeds: []*discordgo.MessageEmbed{
			{
				Title: fmt.Sprintf("`%s` just joined, are they meant to be here?", user.Username),
				Color: embedColorJoin,
				Thumbnail: &discordgo.MessageEmbedThumbnail{
					URL: user.AvatarURL(""),
				},
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:   "user details",
						Value:  fmt.Sprintf("name: %s\nid: %s\ncreation date: <t:%d>", user.Username, user.ID, created),
						Inline: false,
					},
				},
			},
		},
		Components: decisionButtons(review.ID, rejectVerb, false),
	}
}

// resolvedAlert is the alert as it should look once a decision was taken: same text,
// both buttons disabled and a footer saying who decided
func resolvedAlert(msg *discordgo.Message, reviewID string, actor *discordgo.User, d types.Decision, rejectVerb string) *discordgo.InteractionResponseData {
	footer := &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%s: %s", pastTense(d, rejectVerb), actor.Username),
	}

	data := &discordgo.InteractionResponseData{
		Components: decisionButtons(reviewID, rejectVerb, true),
	}
	if msg == nil {
		data.Embeds = []*discordgo.MessageEmbed{{Footer: footer}}
		return data
	}

	data.Content = msg.Content
	for idx, e := range msg.Embeds {
		embed := *e
		if idx == 0 {
			embed.Footer = footer
		}
		data.Embeds = append(data.Embeds, &embed)
	}
	if len(data.Embeds) == 0 {
		data.Embeds = []*discordgo.MessageEmbed{{Footer: footer}}
	}
	return data
}

func pastTense(d types.Decision, rejectVerb string) string {
	if d == types.DecisionApprove {
		return "verified by"
	}
	if rejectVerb == common.RejectKick {
		return "kicked by"
	}
	return "banned by"
}
