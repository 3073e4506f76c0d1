package types

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// ServerRegistration ties a guild to the roles and channel used to review its joins
type ServerRegistration struct {
	ServerID       string `json:"guild_id"`
	AdminRoleID    string `json:"admin_role_id"`
	VerifiedRoleID string `json:"verified_role_id"`
	AlertChannelID string `json:"alert_channel_id"`
}

type Decision int

const (
	DecisionApprove Decision = iota // 0
	DecisionReject  Decision = iota // 1
)

func (d Decision) String() string {
	switch d {
	case DecisionApprove:
		return "approve"
	case DecisionReject:
		return "reject"
	}
	return "unknown"
}

// ParseDecision maps the action part of a button custom id back to a decision
func ParseDecision(s string) (Decision, bool) {
	switch s {
	case "approve":
		return DecisionApprove, true
	case "reject":
		return DecisionReject, true
	}
	return 0, false
}

type RegisterOutcome int

const (
	Registered        RegisterOutcome = iota + 1 // 1
	Unauthorized      RegisterOutcome = iota + 1 // 2
	AlreadyRegistered RegisterOutcome = iota + 1 // 3
)

func (o RegisterOutcome) String() string {
	switch o {
	case Registered:
		return "registered"
	case Unauthorized:
		return "unauthorized"
	case AlreadyRegistered:
		return "already registered"
	}
	return "unknown"
}

type StateInterface interface {
	Int() int
	Str() string
	Terminal() bool
	Register()
	GetRegistered() []StateInterface
}

var reviewStateRegister []StateInterface

// Implements a StateInterface for join reviews
type ReviewState struct {
	Value       int
	Description string
	final       bool
}

func (s ReviewState) Int() int {
	return s.Value
}

func (s ReviewState) Str() string {
	return s.Description
}

func (s ReviewState) String() string {
	return s.Description
}

// Terminal reports whether no further transition can leave this state
func (s ReviewState) Terminal() bool {
	return s.final
}

func (s ReviewState) Register() {
	reviewStateRegister = append(reviewStateRegister, s)
}

func (s ReviewState) GetRegistered() []StateInterface {
	return reviewStateRegister
}

// Review States
var ReviewNoRegistration = ReviewState{
	Value:       0,
	Description: "No Registration",
	final:       true,
}

var ReviewAwaitingDecision = ReviewState{
	Value:       1,
	Description: "Awaiting Decision",
}

var ReviewApproved = ReviewState{
	Value:       2,
	Description: "Approved",
	final:       true,
}

var ReviewRejected = ReviewState{
	Value:       3,
	Description: "Rejected",
	final:       true,
}

var ReviewFailed = ReviewState{
	Value:       4,
	Description: "Failed",
	final:       true,
}

var ReviewStateUnknown = ReviewState{
	Value:       -1,
	Description: "Unknown State",
	final:       true,
}

func init() {
	ReviewNoRegistration.Register()
	ReviewAwaitingDecision.Register()
	ReviewApproved.Register()
	ReviewRejected.Register()
	ReviewFailed.Register()
}

// State getter
func GetReviewState(state int) ReviewState {
	for _, v := range ReviewStateUnknown.GetRegistered() {
		if v.Int() == state {
			return v.(ReviewState)
		}
	}
	return ReviewStateUnknown
}

type SlashContext struct {
	Context     context.Context
	Discord     *discordgo.Session
	Interaction *discordgo.Interaction
	AppCmdData  *discordgo.ApplicationCommandInteractionData
	User        *discordgo.User
}

// SlashReply is what a command handler wants sent back. An empty Content sends nothing
type SlashReply struct {
	Content   string
	Ephemeral bool
}

type SlashCreator func() map[string]SlashCommand
type SlashHandler func(context SlashContext) SlashReply

// Intermediate slash command representation
type SlashCommand struct {
	CmdName     string
	Name        string
	Description string
	Server      string
	Handler     SlashHandler
	Options     []*discordgo.ApplicationCommandOption
	Disabled    bool
}
