package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"
	log "github.com/sirupsen/logrus"
)

const maxNameLength = 64

type PlayerService struct {
	ledger store.Ledger
}

func NewPlayerService(ledger store.Ledger) *PlayerService {
	return &PlayerService{ledger: ledger}
}

// CreatePlayer trims the name and stores it as given otherwise. Names are
// case-sensitive; two racing inserts of one name yield one ConflictError.
func (s *PlayerService) CreatePlayer(ctx context.Context, name string) (models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return models.Player{}, invalid("name", "must be at most %d characters", maxNameLength)
	}

	p, err := s.ledger.CreatePlayer(ctx, name)
	if errors.Is(err, store.ErrAlreadyExists) {
		return models.Player{}, &ConflictError{Entity: "player", Message: fmt.Sprintf("name %q is already taken", name)}
	}
	if err != nil {
		return models.Player{}, fmt.Errorf("failed to create player: %w", err)
	}
	log.Infof("player %d created", p.ID)
	return p, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return s.ledger.ListPlayers(ctx)
}

func (s *PlayerService) GetPlayer(ctx context.Context, id int64) (models.Player, error) {
	return getPlayer(ctx, s.ledger, id)
}

func getPlayer(ctx context.Context, ledger store.Ledger, id int64) (models.Player, error) {
	if id <= 0 {
		return models.Player{}, invalid("player_id", "must be a positive integer")
	}
	p, err := ledger.GetPlayer(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Player{}, &NotFoundError{Entity: "player", ID: id}
	}
	if err != nil {
		return models.Player{}, err
	}
	return p, nil
}
