package admin

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"sentinel/perms"
	"sentinel/store"
	"sentinel/types"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

type fakeStore struct {
	store.Store
	inserts int
	err     error
}

func (f *fakeStore) InsertRegistration(ctx context.Context, reg types.ServerRegistration) error {
	f.inserts++
	return f.err
}

func reg100() types.ServerRegistration {
	return types.ServerRegistration{ServerID: "100", AdminRoleID: "5", VerifiedRoleID: "6", AlertChannelID: "9"}
}

func TestRegisterUnauthorizedTouchesNothing(t *testing.T) {
	fs := &fakeStore{}
	r := NewRegistrar(fs, perms.New([]string{"1"}))

	outcome, err := r.Register(context.Background(), "2", reg100())
	if !errors.Is(err, types.ErrUnauthorized) || types.IsStorageFault(err) {
		t.Fatalf("expected ErrUnauthorized got %v", err)
	}
	if outcome != types.Unauthorized {
		t.Fatalf("expected Unauthorized got %s", outcome)
	}
	if fs.inserts != 0 {
		t.Fatalf("storage was accessed %d times", fs.inserts)
	}
}

func TestRegisterTwice(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "sentinel.sqlite3"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	r := NewRegistrar(s, perms.New([]string{"1"}))

	first, err := r.Register(ctx, "1", reg100())
	if err != nil || first != types.Registered {
		t.Fatalf("expected Registered got %s (%v)", first, err)
	}

	other := types.ServerRegistration{ServerID: "100", AdminRoleID: "50", VerifiedRoleID: "60", AlertChannelID: "90"}
	second, err := r.Register(ctx, "1", other)
	if err != nil || second != types.AlreadyRegistered {
		t.Fatalf("expected AlreadyRegistered got %s (%v)", second, err)
	}

	got, err := s.GetRegistration(ctx, "100")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != reg100() {
		t.Fatalf("stored record changed to %+v", *got)
	}
}

func TestRegisterStorageFault(t *testing.T) {
	fs := &fakeStore{err: types.StorageFault(errors.New("disk on fire"), "insert registration")}
	r := NewRegistrar(fs, perms.New([]string{"1"}))

	_, err := r.Register(context.Background(), "1", reg100())
	if !types.IsStorageFault(err) {
		t.Fatalf("expected a storage fault got %v", err)
	}
}

func commandContext(userID string, args map[string]string) types.SlashContext {
	data := &discordgo.ApplicationCommandInteractionData{Name: "register_server"}
	for name, value := range args {
		data.Options = append(data.Options, &discordgo.ApplicationCommandInteractionDataOption{
			Name:  name,
			Type:  discordgo.ApplicationCommandOptionString,
			Value: value,
		})
	}
	return types.SlashContext{
		Context:    context.Background(),
		AppCmdData: data,
		User:       &discordgo.User{ID: userID},
	}
}

func validArgs() map[string]string {
	return map[string]string{
		"guild_id":         "100",
		"admin_role_id":    "5",
		"verified_role_id": "6",
		"alert_channel_id": "9",
	}
}

func TestRegisterServerCommand(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "sentinel.sqlite3"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	r := NewRegistrar(s, perms.New([]string{"1"}))

	reply := registerServer(commandContext("2", validArgs()), r)
	if !reply.Ephemeral || !strings.Contains(reply.Content, "don't have permission") {
		t.Fatalf("unexpected reply for a non-operator: %+v", reply)
	}

	reply = registerServer(commandContext("1", validArgs()), r)
	if reply.Content != "server `100` registered successfully." {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	reply = registerServer(commandContext("1", validArgs()), r)
	if reply.Content != "the server `100` is already registered!" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	bad := validArgs()
	bad["verified_role_id"] = "verified"
	reply = registerServer(commandContext("1", bad), r)
	if !reply.Ephemeral || !strings.Contains(reply.Content, "not a valid id") {
		t.Fatalf("unexpected reply for a bad id: %+v", reply)
	}
}

func TestCmdInit(t *testing.T) {
	cmds := CmdInit(NewRegistrar(&fakeStore{}, perms.New(nil)))()
	cmd, ok := cmds["REGISTER_SERVER"]
	if !ok {
		t.Fatalf("register_server missing from IR")
	}
	if cmd.Name != "register_server" || len(cmd.Options) != 4 {
		t.Fatalf("unexpected command IR: %+v", cmd)
	}
	for _, opt := range cmd.Options {
		if !opt.Required || opt.Type != discordgo.ApplicationCommandOptionString {
			t.Fatalf("option %s must be a required string", opt.Name)
		}
	}
}
