// Package quest models the mission board: players request quests, an admin
// fills in description and reward, and completion goes through an approval
// step before points are awarded.
package quest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a quest.
type Status string

const (
	// StatusPending: requested, no description or reward yet.
	StatusPending Status = "pending"
	// StatusActive: assigned and in progress.
	StatusActive Status = "active"
	// StatusCompleted: the player claims it is done, awaiting approval.
	StatusCompleted Status = "completed"
	// StatusApproved: terminal; reward points have been granted.
	StatusApproved Status = "approved"
	// StatusAbandoned: terminal; given up before approval.
	StatusAbandoned Status = "abandoned"
)

var (
	ErrNotFound      = errors.New("quest not found")
	ErrPendingExists = errors.New("player already has a pending quest request")
	ErrNotQuestOwner = errors.New("quest belongs to another player")
)

// ErrInvalidTransition reports a state-machine violation.
type ErrInvalidTransition struct {
	From Status
	To   Status
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("quest cannot move from %s to %s", e.From, e.To)
}

// Quest is one mission board record.
type Quest struct {
	ID          uuid.UUID `json:"id"`
	PlayerID    string    `json:"player_id"`
	Description string    `json:"description,omitempty"`
	Reward      string    `json:"reward,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CanTransition reports whether a status change is legal. A rejection is
// modeled as completed → active.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusActive || to == StatusAbandoned
	case StatusActive:
		return to == StatusCompleted || to == StatusAbandoned
	case StatusCompleted:
		return to == StatusApproved || to == StatusActive
	default:
		return false
	}
}

// RewardPoints extracts the point value from a free-text reward such as
// "15 PC and a healing potion". The first integer in the text wins; a
// reward without a number is worth zero points.
func RewardPoints(reward string) int {
	fields := strings.FieldsFunc(reward, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
