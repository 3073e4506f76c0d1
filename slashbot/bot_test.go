package slashbot

import (
	"testing"

	"sentinel/types"

	"github.com/bwmarrin/discordgo"
)

func TestGetArg(t *testing.T) {
	data := &discordgo.ApplicationCommandInteractionData{
		Name: "register_server",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "guild_id", Type: discordgo.ApplicationCommandOptionString, Value: "  100 "},
			{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		},
	}

	if got := GetArg(data, "guild_id"); got != "100" {
		t.Fatalf("expected trimmed 100 got %q", got)
	}
	if got := GetArg(data, "count"); got != "" {
		t.Fatalf("non-string option should read as empty, got %q", got)
	}
	if got := GetArg(data, "missing"); got != "" {
		t.Fatalf("expected empty for a missing option, got %q", got)
	}
}

func TestSetupSlashSkipsDisabled(t *testing.T) {
	creator := func() map[string]types.SlashCommand {
		return map[string]types.SlashCommand{
			"REGISTER": {CmdName: "REGISTER", Name: "register_server", Description: "register"},
			"OLD":      {CmdName: "OLD", Name: "old", Description: "gone", Disabled: true},
		}
	}
	if err := SetupSlash(nil, creator, false); err != nil {
		t.Fatalf("setup: %v", err)
	}

	mu.RLock()
	defer mu.RUnlock()
	if commandNameCache["register_server"] != "REGISTER" {
		t.Fatalf("register_server not loaded")
	}
	if _, ok := commandNameCache["old"]; ok {
		t.Fatalf("disabled command was loaded")
	}
}
