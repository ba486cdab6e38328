package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"live-quiz-service/internal/domain"
)

type teamStyle struct {
	name  string
	emoji string
	color string
}

var teamPalette = []teamStyle{
	{"Red Foxes", "🦊", "#e53935"},
	{"Blue Whales", "🐳", "#1e88e5"},
	{"Green Frogs", "🐸", "#43a047"},
	{"Yellow Bees", "🐝", "#fdd835"},
	{"Purple Owls", "🦉", "#8e24aa"},
	{"Orange Tigers", "🐯", "#fb8c00"},
	{"Pink Flamingos", "🦩", "#d81b60"},
	{"Teal Turtles", "🐢", "#00897b"},
}

const minTeams = 2

func buildTeams(cfg domain.TeamConfig) ([]domain.Team, error) {
	if cfg.TeamCount < minTeams || cfg.TeamCount > len(teamPalette) {
		return nil, fmt.Errorf("%w: team count must be between %d and %d", domain.ErrInvalidTeamSetup, minTeams, len(teamPalette))
	}
	teams := make([]domain.Team, cfg.TeamCount)
	for i := range teams {
		style := teamPalette[i]
		name := style.name
		if i < len(cfg.Names) && strings.TrimSpace(cfg.Names[i]) != "" {
			name = strings.TrimSpace(cfg.Names[i])
		}
		teams[i] = domain.Team{
			ID:     uuid.NewString(),
			Name:   name,
			Emoji:  style.emoji,
			Color:  style.color,
			Health: domain.MaxTeamHealth,
		}
	}
	return teams, nil
}

// assignTeams spreads players over the pre-sized teams in random order, so team sizes differ by
// at most one.
func (e *Engine) assignTeams(room *domain.Room) {
	if len(room.Teams) == 0 {
		return
	}
	order := make([]int, len(room.Players))
	for i := range order {
		order[i] = i
	}
	e.withRand(func(r *rand.Rand) {
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	})
	for slot, idx := range order {
		room.Players[idx].TeamID = room.Teams[slot%len(room.Teams)].ID
	}
}

func resetTeamCounters(room *domain.Room) {
	for i := range room.Teams {
		room.Teams[i].ComboCount = 0
		room.Teams[i].ComboAwarded = false
	}
}

// applyTeamAnswer folds one accepted answer into the player's team: damage on a miss unless
// shielded, combo progress on a hit.
func (e *Engine) applyTeamAnswer(room *domain.Room, player *domain.Player, correct bool, points int, now time.Time, fx *effects) {
	team := room.Team(player.TeamID)
	if team == nil {
		return
	}
	team.Score += points

	if !correct {
		if team.ShieldActive(now) {
			return
		}
		team.Health -= e.opts.HealthDamage
		if team.Health < 0 {
			team.Health = 0
		}
		return
	}

	team.ComboCount++
	members := room.TeamMemberCount(team.ID)
	if team.ComboAwarded || team.ComboCount < members {
		return
	}
	team.ComboAwarded = true

	bonus := e.opts.ComboBonus
	for i := range room.Players {
		if room.Players[i].TeamID == team.ID {
			room.Players[i].Score += bonus
		}
	}
	if e.opts.ComboTeamAward == ComboAwardFlat {
		team.Score += bonus
	} else {
		team.Score += bonus * members
	}

	fx.emit(domain.RoomChannel(room.Pin), domain.EventCombo, domain.ComboPayload{
		Pin:           room.Pin,
		QuestionIndex: room.CurrentQuestionIndex,
		TeamID:        team.ID,
		TeamName:      team.Name,
		Bonus:         bonus,
		Members:       members,
	})
}

// SetupTeams enables team mode in the lobby, replacing any previous team layout.
func (e *Engine) SetupTeams(ctx context.Context, pin string, cfg domain.TeamConfig) (domain.Room, error) {
	return e.mutate(ctx, pin, func(room *domain.Room, _ time.Time, fx *effects) error {
		if room.Status != domain.StatusLobby {
			return fmt.Errorf("%w: teams can only be set up in the lobby", domain.ErrInvalidPhase)
		}
		teams, err := buildTeams(cfg)
		if err != nil {
			return err
		}
		room.TeamMode = true
		room.Teams = teams
		for i := range room.Players {
			room.Players[i].TeamID = ""
		}
		fx.emit(domain.RoomChannel(pin), domain.EventTeamsUpdated, teamsPayload(room))
		return nil
	})
}

// ActivateShield spends a team's one-time shield, suppressing health loss for one question
// duration from now.
func (e *Engine) ActivateShield(ctx context.Context, pin, teamID string) (domain.Team, error) {
	var activated domain.Team
	_, err := e.mutate(ctx, pin, func(room *domain.Room, now time.Time, fx *effects) error {
		if !room.TeamMode {
			return domain.ErrTeamModeDisabled
		}
		if room.Status != domain.StatusQuestion {
			return fmt.Errorf("%w: shields activate during a question", domain.ErrInvalidPhase)
		}
		team := room.Team(teamID)
		if team == nil {
			return domain.ErrTeamNotFound
		}
		if team.ShieldUsed {
			return domain.ErrShieldUnavailable
		}
		q, _ := room.CurrentQuestion()
		team.ShieldUsed = true
		team.ShieldActiveUntil = now.Add(time.Duration(q.TimeLimitMs()) * time.Millisecond)
		activated = *team

		fx.emit(domain.RoomChannel(pin), domain.EventShieldActivated, domain.ShieldPayload{
			Pin:         pin,
			TeamID:      team.ID,
			ActiveUntil: team.ShieldActiveUntil,
		})
		fx.emit(domain.RoomChannel(pin), domain.EventTeamsUpdated, teamsPayload(room))
		return nil
	})
	return activated, err
}

func teamsPayload(room *domain.Room) domain.TeamsPayload {
	return domain.TeamsPayload{Pin: room.Pin, Teams: append([]domain.Team(nil), room.Teams...)}
}
