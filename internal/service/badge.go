package service

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/terraemar-pos/api/internal/database"
	"golang.org/x/sync/errgroup"
)

// Counts are the sidebar badges.
type Counts struct {
	Tables   int64 `json:"tables"`
	Takeaway int64 `json:"takeaway"`
	Online   int64 `json:"online"`
	Kitchen  int64 `json:"kitchen"`
}

// BadgeService computes navigation indicators. Failed reads are logged and
// count as zero so a broken badge never breaks the page.
type BadgeService struct {
	store Store
}

func NewBadgeService(store Store) *BadgeService {
	return &BadgeService{store: store}
}

func (s *BadgeService) SidebarCounts(ctx context.Context) Counts {
	var c Counts
	var g errgroup.Group

	count := func(name string, dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				log.WithError(err).WithField("badge", name).Warn("count badge")
				return nil
			}
			*dst = n
			return nil
		})
	}
	count("tables", &c.Tables, s.store.CountTablesWithPendingBill)
	count("takeaway", &c.Takeaway, s.store.CountTakeawayAwaitingPickup)
	count("online", &c.Online, s.store.CountOnlineActive)
	count("kitchen", &c.Kitchen, s.store.CountKitchenActive)

	_ = g.Wait()
	return c
}

// TableFlags lists dine-in tables with their open-orders and pending-bill flags.
func (s *BadgeService) TableFlags(ctx context.Context) []database.ListTableFlagsRow {
	rows, err := s.store.ListTableFlags(ctx)
	if err != nil {
		log.WithError(err).Warn("list table flags")
		return []database.ListTableFlagsRow{}
	}
	return rows
}

func (s *BadgeService) TakeawayHasOpenOrders(ctx context.Context) bool {
	open, err := s.store.TakeawayHasOpenOrders(ctx)
	if err != nil {
		log.WithError(err).Warn("check takeaway orders")
		return false
	}
	return open
}
