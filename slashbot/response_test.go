package slashbot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

type fakeAPI struct {
	calls     []string
	responses []*discordgo.InteractionResponse
	edits     []string
	followups []*discordgo.WebhookParams
}

func (f *fakeAPI) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.calls = append(f.calls, "respond")
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls = append(f.calls, "edit")
	f.edits = append(f.edits, *edit.Content)
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) InteractionResponseDelete(i *discordgo.Interaction, options ...discordgo.RequestOption) error {
	f.calls = append(f.calls, "delete")
	return nil
}

func (f *fakeAPI) FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls = append(f.calls, "followup")
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func TestSendWithoutDefer(t *testing.T) {
	api := &fakeAPI{}
	r := newResponder(api, &discordgo.Interaction{})
	r.send("nope", true)
	r.send("twice", false)

	if len(api.responses) != 1 {
		t.Fatalf("expected one response got %v", api.calls)
	}
	data := api.responses[0].Data
	if data.Content != "nope" || data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("unexpected response %+v", data)
	}
}

func TestDeferredEphemeralReplyStaysPrivate(t *testing.T) {
	api := &fakeAPI{}
	r := newResponder(api, &discordgo.Interaction{})
	r.deferReply()
	r.send("something went wrong", true)

	want := []string{"respond", "delete", "followup"}
	if strings.Join(api.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected calls %v got %v", want, api.calls)
	}
	if api.followups[0].Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("followup lost the ephemeral flag")
	}
}

func TestDeferredPublicReplyEditsPlaceholder(t *testing.T) {
	api := &fakeAPI{}
	r := newResponder(api, &discordgo.Interaction{})
	r.deferReply()
	r.deferReply()
	r.send("registered", false)

	if strings.Join(api.calls, ",") != "respond,edit" {
		t.Fatalf("unexpected calls %v", api.calls)
	}
	if api.edits[0] != "registered" {
		t.Fatalf("unexpected edit %q", api.edits[0])
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	long := strings.Repeat("é", maxContent+10)
	got := truncate(long)
	if !utf8.ValidString(got) || utf8.RuneCountInString(got) != maxContent {
		t.Fatalf("expected %d valid runes got %d (valid %t)", maxContent, utf8.RuneCountInString(got), utf8.ValidString(got))
	}
	if truncate("short") != "short" {
		t.Fatalf("short content must be left alone")
	}
}
