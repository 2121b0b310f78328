// File: internal/digest/service.go
package digest

import (
	"context"
	"fmt"
	"time"

	"flipradar_backend/internal/config"
	"flipradar_backend/internal/listing"
	"flipradar_backend/internal/notify"
	"flipradar_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs the watch-matching digest cycle across all users.
type Service interface {
	// RunDigestCycle selects, ranks and dispatches fresh matching listings
	// for every user with at least one watch, then records the delivered
	// items as seen. An error means the whole cycle was skipped; per-user
	// failures are logged and absorbed.
	RunDigestCycle(ctx context.Context) error
}

type service struct {
	listingRepo listing.Repository
	userRepo    user.Repository
	seenRepo    SeenRepository
	dispatcher  notify.Dispatcher
	cfg         *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new digest service.
func NewService(
	listingRepo listing.Repository,
	userRepo user.Repository,
	seenRepo SeenRepository,
	dispatcher notify.Dispatcher,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		seenRepo:    seenRepo,
		dispatcher:  dispatcher,
		cfg:         cfg,
		logger:      logger.Named("digest"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) RunDigestCycle(ctx context.Context) error {
	now := s.now()
	since := now.Add(-time.Duration(s.cfg.DigestLookbackHours) * time.Hour)

	// A store read failure skips the whole cycle; seen state stays
	// untouched and the next tick retries.
	users, err := s.userRepo.FindAllWithWatches(ctx)
	if err != nil {
		return fmt.Errorf("digest cycle aborted, cannot load users: %w", err)
	}
	pool, err := s.listingRepo.Recent(ctx, since)
	if err != nil {
		return fmt.Errorf("digest cycle aborted, cannot load recent listings: %w", err)
	}

	s.logger.Info("digest cycle start",
		zap.Int("users", len(users)),
		zap.Int("recent_listings", len(pool)),
		zap.Time("since", since))

	notified := 0
	for i := range users {
		u := &users[i]
		if len(u.Watches) == 0 {
			continue
		}
		if err := s.runForUser(ctx, u, pool, now); err != nil {
			// One user's failure never blocks the next.
			s.logger.Error("digest failed for user",
				zap.Int64("user_id", u.TelegramID), zap.Error(err))
			continue
		}
		notified++
	}

	s.logger.Info("digest cycle done", zap.Int("users_processed", notified))
	return nil
}

func (s *service) runForUser(ctx context.Context, u *user.User, pool []listing.Listing, now time.Time) error {
	candidates := SelectCandidates(pool, u)
	ranked := RankTop(candidates, now, s.cfg.DigestMaxItems)
	if len(ranked) == 0 {
		return nil
	}

	seen, err := s.seenRepo.SeenListingIDs(ctx, u.TelegramID)
	if err != nil {
		return err
	}
	fresh := DropSeen(ranked, seen)
	if len(fresh) == 0 {
		// Nothing new for this user this cycle: no notification, no write.
		return nil
	}

	delivered, err := s.dispatcher.SendDigest(ctx, u.TelegramID, fresh)
	if len(delivered) > 0 {
		// Marks are written only after dispatch was attempted, and only for
		// items that actually went out, so a failed batch is retried while a
		// degraded (text-only) delivery is not resent.
		ids := make([]uuid.UUID, 0, len(delivered))
		for _, l := range delivered {
			ids = append(ids, l.ID)
		}
		if markErr := s.seenRepo.MarkSeen(ctx, u.TelegramID, ids); markErr != nil {
			return markErr
		}
	}
	if err != nil {
		return err
	}
	if len(delivered) == 0 {
		return fmt.Errorf("dispatch delivered nothing for user %d (%d items attempted)", u.TelegramID, len(fresh))
	}

	s.logger.Debug("digest delivered",
		zap.Int64("user_id", u.TelegramID),
		zap.Int("items", len(delivered)))
	return nil
}
