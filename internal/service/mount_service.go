package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/sitesafe-learn/internal/config"
	"github.com/stemsi/sitesafe-learn/internal/content"
	"github.com/stemsi/sitesafe-learn/internal/model"
	"github.com/stemsi/sitesafe-learn/internal/quiz"
)

// Mount errors.
var (
	ErrInvalidTicket = errors.New("invalid mount ticket")
	ErrMountExpired  = errors.New("mount expired")
	ErrPageNotFound  = content.ErrPageNotFound
	ErrCheckNotFound = content.ErrCheckNotFound
	ErrNoQuiz        = content.ErrNoQuiz
)

// minStoreTTL keeps a write from expiring immediately when the ticket is
// about to run out.
const minStoreTTL = time.Second

// MountClaims are the JWT claims of a mount ticket.
type MountClaims struct {
	jwt.RegisteredClaims
	MountID uuid.UUID `json:"mount_id"`
	Page    string    `json:"page"`
}

// MountStore persists the widget selections of live mounts.
type MountStore interface {
	Load(ctx context.Context, mountID uuid.UUID) (*model.MountSnapshot, error)
	SaveCheck(ctx context.Context, mountID uuid.UUID, sectionID string, option int, ttl time.Duration) error
	SaveQuizAnswer(ctx context.Context, mountID uuid.UUID, questionID string, option int, ttl time.Duration) error
	ClearQuiz(ctx context.Context, mountID uuid.UUID) error
	Delete(ctx context.Context, mountID uuid.UUID) error
}

// MountService owns the lifecycle of mounts: every rendering of a page gets
// fresh widget state that lives until the ticket expires or is discarded.
type MountService struct {
	catalog *content.Catalog
	store   MountStore
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewMountService creates a new MountService.
func NewMountService(cfg *config.Config, catalog *content.Catalog, store MountStore, log zerolog.Logger) *MountService {
	return &MountService{
		catalog: catalog,
		store:   store,
		secret:  []byte(cfg.MountSecret),
		ttl:     cfg.MountTTL,
		now:     time.Now,
		log:     log.With().Str("component", "mount_service").Logger(),
	}
}

// Mount starts a fresh rendering of the page. Nothing is stored until the
// first selection.
func (s *MountService) Mount(ctx context.Context, slug string) (*model.MountTicket, error) {
	if _, err := s.catalog.Page(slug); err != nil {
		return nil, err
	}

	mountID := uuid.New()
	now := s.now()
	expires := now.Add(s.ttl)

	claims := MountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        mountID.String(),
			Subject:   slug,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		MountID: mountID,
		Page:    slug,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign ticket: %w", err)
	}

	s.log.Debug().Str("mount_id", mountID.String()).Str("page", slug).Msg("Page mounted")

	return &model.MountTicket{
		MountID:   mountID,
		Page:      slug,
		Token:     signed,
		ExpiresAt: expires.UTC().Truncate(time.Second),
	}, nil
}

// ParseTicket validates a ticket and returns its claims.
func (s *MountService) ParseTicket(token string) (*MountClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &MountClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrMountExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	claims, ok := parsed.Claims.(*MountClaims)
	if !ok || !parsed.Valid || claims.MountID == uuid.Nil {
		return nil, ErrInvalidTicket
	}
	if _, err := s.catalog.Page(claims.Page); err != nil {
		return nil, fmt.Errorf("%w: page %q no longer exists", ErrInvalidTicket, claims.Page)
	}
	return claims, nil
}

// SelectCheck records the reader's choice on one InlineCheck.
func (s *MountService) SelectCheck(ctx context.Context, m *MountClaims, sectionID string, option int) (*quiz.Outcome, error) {
	q, err := s.catalog.Check(m.Page, sectionID)
	if err != nil {
		return nil, err
	}
	check, err := quiz.NewCheck(q)
	if err != nil {
		return nil, err
	}

	snap, err := s.store.Load(ctx, m.MountID)
	if err != nil {
		return nil, fmt.Errorf("load mount: %w", err)
	}
	if prev, ok := snap.Checks[sectionID]; ok {
		_, _ = check.Select(prev)
	}

	out, err := check.Select(option)
	if err != nil {
		return nil, err
	}
	if out.Changed {
		if err := s.store.SaveCheck(ctx, m.MountID, sectionID, option, s.remaining(m)); err != nil {
			return nil, fmt.Errorf("save check: %w", err)
		}
	}
	return &out, nil
}

// AnswerQuiz records the reader's choice on one quiz question.
func (s *MountService) AnswerQuiz(ctx context.Context, m *MountClaims, questionID string, option int) (*model.QuizAnswerResult, error) {
	z, err := s.loadQuiz(ctx, m)
	if err != nil {
		return nil, err
	}

	out, err := z.Answer(questionID, option)
	if err != nil {
		return nil, err
	}
	if out.Changed {
		if err := s.store.SaveQuizAnswer(ctx, m.MountID, questionID, option, s.remaining(m)); err != nil {
			return nil, fmt.Errorf("save answer: %w", err)
		}
	}

	return &model.QuizAnswerResult{Outcome: out, Score: model.NewQuizScore(z)}, nil
}

// Score returns the current quiz result.
func (s *MountService) Score(ctx context.Context, m *MountClaims) (*model.QuizScore, error) {
	z, err := s.loadQuiz(ctx, m)
	if err != nil {
		return nil, err
	}
	score := model.NewQuizScore(z)
	return &score, nil
}

// ResetQuiz clears every quiz answer so the reader can retake it. Inline
// checks keep their selections.
func (s *MountService) ResetQuiz(ctx context.Context, m *MountClaims) (*model.QuizState, error) {
	z, err := s.catalog.NewQuiz(m.Page)
	if err != nil {
		return nil, err
	}
	if err := s.store.ClearQuiz(ctx, m.MountID); err != nil {
		return nil, fmt.Errorf("clear quiz: %w", err)
	}
	return quizState(z), nil
}

// State returns the display state of every widget on the mounted page.
func (s *MountService) State(ctx context.Context, m *MountClaims) (*model.MountState, error) {
	page, err := s.catalog.Page(m.Page)
	if err != nil {
		return nil, err
	}
	snap, err := s.store.Load(ctx, m.MountID)
	if err != nil {
		return nil, fmt.Errorf("load mount: %w", err)
	}

	state := &model.MountState{MountID: m.MountID, Page: page.Slug, Checks: []model.CheckState{}}
	for _, sec := range page.Sections {
		if sec.Check == nil {
			continue
		}
		check, err := quiz.NewCheck(sec.Check.Engine())
		if err != nil {
			return nil, err
		}
		if prev, ok := snap.Checks[sec.ID]; ok {
			if _, err := check.Select(prev); err != nil {
				s.log.Warn().Err(err).Str("mount_id", m.MountID.String()).Msg("Dropping stale check selection")
			}
		}
		state.Checks = append(state.Checks, model.CheckState{SectionID: sec.ID, Item: check.View()})
	}

	if page.Quiz != nil {
		z, err := s.catalog.NewQuiz(page.Slug)
		if err != nil {
			return nil, err
		}
		s.restore(z, m, snap.Quiz)
		state.Quiz = quizState(z)
	}
	return state, nil
}

// Discard drops all state of the mount.
func (s *MountService) Discard(ctx context.Context, m *MountClaims) error {
	if err := s.store.Delete(ctx, m.MountID); err != nil {
		return fmt.Errorf("delete mount: %w", err)
	}
	s.log.Debug().Str("mount_id", m.MountID.String()).Msg("Mount discarded")
	return nil
}

func (s *MountService) loadQuiz(ctx context.Context, m *MountClaims) (*quiz.Quiz, error) {
	z, err := s.catalog.NewQuiz(m.Page)
	if err != nil {
		return nil, err
	}
	snap, err := s.store.Load(ctx, m.MountID)
	if err != nil {
		return nil, fmt.Errorf("load mount: %w", err)
	}
	s.restore(z, m, snap.Quiz)
	return z, nil
}

// restore rehydrates z from stored answers. A snapshot that no longer fits
// the content is applied entry by entry, dropping what does not match.
func (s *MountService) restore(z *quiz.Quiz, m *MountClaims, answers map[string]int) {
	err := z.Restore(answers)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Str("mount_id", m.MountID.String()).Msg("Stored quiz answers do not match content")
	for id, option := range answers {
		_, _ = z.Answer(id, option)
	}
}

// remaining is how long stored state should outlive this write: until the
// ticket itself expires.
func (s *MountService) remaining(m *MountClaims) time.Duration {
	if m.ExpiresAt == nil {
		return s.ttl
	}
	if d := m.ExpiresAt.Sub(s.now()); d > minStoreTTL {
		return d
	}
	return minStoreTTL
}

func quizState(z *quiz.Quiz) *model.QuizState {
	return &model.QuizState{
		Title:     z.Title(),
		QuizScore: model.NewQuizScore(z),
		Items:     z.Items(),
	}
}
