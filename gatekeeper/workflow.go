// Package gatekeeper alerts a server's admins when someone joins and carries out
// their decision.
//
// A join opens a review and posts an alert with an approve and a reject button.
// The first admin press claims the review, disables both buttons and only then
// grants the verified role or removes the member, so one review has one outcome
// however many presses Discord delivers.
package gatekeeper

import (
	"context"
	"sync"

	"sentinel/common"
	"sentinel/perms"
	"sentinel/store"
	"sentinel/types"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// RejectReason tags every removal in the server's audit log
const RejectReason = "[sentinel] not verified"

const (
	msgNoPermission   = "you don't have permission to use this button."
	msgAlreadyHandled = "this join has already been handled."
)

type Options struct {
	EpochMs      uint64 // Snowflake epoch, common.DiscordEpoch when zero
	RejectAction string // common.RejectBan or common.RejectKick, ban when empty
}

type Workflow struct {
	store   store.Store
	sink    Sink
	reviews *Reviews
	epochMs uint64
	verb    string

	mu       sync.Mutex
	outcomes map[int]int // review state value -> count
}

func New(s store.Store, sink Sink, opts Options) *Workflow {
	w := &Workflow{
		store:   s,
		sink:    sink,
		reviews:  NewReviews(),
		outcomes: make(map[int]int),
		epochMs:  opts.EpochMs,
		verb:    opts.RejectAction,
	}
	if w.epochMs == 0 {
		w.epochMs = common.DiscordEpoch
	}
	if w.verb == "" {
		w.verb = common.RejectBan
	}
	return w
}

// Pending is the number of reviews waiting for a decision
func (w *Workflow) Pending() int {
	return w.reviews.Len()
}

// Outcomes counts finished reviews by their final state
func (w *Workflow) Outcomes() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.outcomes))
	for value, n := range w.outcomes {
		out[types.GetReviewState(value).Str()] = n
	}
	return out
}

// record counts a review that reached a terminal state. NoRegistration means no
// review existed
func (w *Workflow) record(state types.ReviewState) {
	if !state.Terminal() || state == types.ReviewNoRegistration {
		return
	}
	w.mu.Lock()
	w.outcomes[state.Int()]++
	w.mu.Unlock()
}

// OnJoin posts a review alert for member if its server is registered. Unregistered
// servers and servers whose admin role or alert channel no longer resolve are ignored
func (w *Workflow) OnJoin(ctx context.Context, member *discordgo.Member) (types.ReviewState, error) {
	if member == nil || member.User == nil {
		return types.ReviewNoRegistration, nil
	}

	logger := log.WithFields(log.Fields{
		"guild":  member.GuildID,
		"member": member.User.ID,
	})

	reg, err := w.store.GetRegistration(ctx, member.GuildID)
	if errors.Is(err, types.ErrNotFound) {
		return types.ReviewNoRegistration, nil
	} else if err != nil {
		return types.ReviewNoRegistration, err
	}

	adminRole, err := w.sink.ResolveRole(reg.ServerID, reg.AdminRoleID)
	if errors.Is(err, types.ErrNotFound) {
		logger.Debug("Admin role ", reg.AdminRoleID, " not found, ignoring join")
		return types.ReviewNoRegistration, nil
	} else if err != nil {
		return types.ReviewNoRegistration, err
	}

	channel, err := w.sink.ResolveChannel(reg.AlertChannelID)
	if errors.Is(err, types.ErrNotFound) {
		logger.Debug("Alert channel ", reg.AlertChannelID, " not found, ignoring join")
		return types.ReviewNoRegistration, nil
	} else if err != nil {
		return types.ReviewNoRegistration, err
	}

	created, err := common.SnowflakeCreated(member.User.ID, w.epochMs)
	if err != nil {
		return types.ReviewNoRegistration, err
	}

	review := w.reviews.Open(member.User.ID, member.User.Username, *reg)
	if _, err := w.sink.PostMessage(channel.ID, joinAlert(review, member.User, adminRole, created, w.verb)); err != nil {
		w.reviews.Drop(review.ID)
		w.record(types.ReviewFailed)
		return types.ReviewFailed, types.PlatformFault(err, "post join alert")
	}

	logger.WithField("review", review.ID).Info("Join alert posted")
	return types.ReviewAwaitingDecision, nil
}

// OnDecision handles a press on one of our decision buttons. Presses on components
// that are not ours return ReviewNoRegistration without touching the interaction
func (w *Workflow) OnDecision(ctx context.Context, i *discordgo.Interaction) (types.ReviewState, error) {
	if i.Type != discordgo.InteractionMessageComponent {
		return types.ReviewNoRegistration, nil
	}
	decision, reviewID, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return types.ReviewNoRegistration, nil
	}

	review, ok := w.reviews.Get(reviewID)
	if !ok {
		return types.ReviewNoRegistration, w.respond(i, msgAlreadyHandled, true)
	}

	if i.Member == nil || i.Member.User == nil || i.GuildID != review.Registration.ServerID ||
		!perms.HasRole(i.Member.Roles, review.Registration.AdminRoleID) {
		return types.ReviewAwaitingDecision, w.respond(i, msgNoPermission, true)
	}

	review, ok = w.reviews.Claim(reviewID)
	if !ok {
		return types.ReviewNoRegistration, w.respond(i, msgAlreadyHandled, true)
	}

	state, err := w.decide(i, review, decision)
	w.record(state)
	return state, err
}

// decide carries out a claimed review
func (w *Workflow) decide(i *discordgo.Interaction, review JoinReview, decision types.Decision) (types.ReviewState, error) {
	logger := log.WithFields(log.Fields{
		"guild":    review.Registration.ServerID,
		"member":   review.MemberID,
		"actor":    i.Member.User.ID,
		"decision": decision.String(),
		"review":   review.ID,
	})

	// The buttons go dead before anything is done to the member
	acked := true
	if err := w.sink.ResolveControls(i, resolvedAlert(i.Message, review.ID, i.Member.User, decision, w.verb)); err != nil {
		logger.Warning("Could not disable decision buttons: ", err)
		acked = false
	}
	reply := func(content string) {
		var err error
		if acked {
			err = w.sink.Followup(i, content)
		} else {
			err = w.sink.RespondToInteraction(i, content, false)
		}
		if err != nil {
			logger.Error("Could not send decision reply: ", err)
		}
	}

	serverID := review.Registration.ServerID

	if _, err := w.sink.GetMember(serverID, review.MemberID); err != nil {
		reply(w.failedText(decision))
		if errors.Is(err, types.ErrNotFound) {
			logger.Info("Member left before the review")
			return types.ReviewFailed, nil
		}
		return types.ReviewFailed, err
	}

	switch decision {
	case types.DecisionApprove:
		role, err := w.sink.ResolveRole(serverID, review.Registration.VerifiedRoleID)
		if err != nil {
			logger.Warning("Verified role ", review.Registration.VerifiedRoleID, " could not be resolved, nothing granted: ", err)
			if errors.Is(err, types.ErrNotFound) {
				return types.ReviewFailed, nil
			}
			reply(w.failedText(decision))
			return types.ReviewFailed, types.PlatformFault(err, "resolve verified role")
		}
		if err := w.sink.GrantRole(serverID, review.MemberID, role.ID); err != nil {
			reply(w.failedText(decision))
			return types.ReviewFailed, types.PlatformFault(err, "grant verified role")
		}
		reply("user verified!")
		logger.Info("Member verified")
		return types.ReviewApproved, nil
	default:
		if err := w.sink.RemoveMember(serverID, review.MemberID, RejectReason); err != nil {
			reply(w.failedText(decision))
			return types.ReviewFailed, types.PlatformFault(err, "remove member")
		}
		if w.verb == common.RejectKick {
			reply("user kicked!")
		} else {
			reply("user banned!")
		}
		logger.Info("Member removed")
		return types.ReviewRejected, nil
	}
}

func (w *Workflow) respond(i *discordgo.Interaction, content string, ephemeral bool) error {
	if err := w.sink.RespondToInteraction(i, content, ephemeral); err != nil {
		return types.PlatformFault(err, "respond to interaction")
	}
	return nil
}

func (w *Workflow) failedText(d types.Decision) string {
	if d == types.DecisionApprove {
		return "failed to verify user!"
	}
	return "failed to " + w.verb + " user!"
}
