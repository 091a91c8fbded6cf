package jobs

import (
	"context"
	"log"
	"time"

	"nexacred.backend/internal/metrics"
)

// userCounter is the slice of the user repository this job needs.
type userCounter interface {
	CountUsers(ctx context.Context) (int64, error)
	CountWalletLinked(ctx context.Context) (int64, error)
}

// UserStatsJob keeps the user-population gauges current.
type UserStatsJob struct {
	repo     userCounter
	metrics  *metrics.Metrics
	interval time.Duration
	stop     chan struct{}
}

func NewUserStatsJob(repo userCounter, m *metrics.Metrics) *UserStatsJob {
	return &UserStatsJob{
		repo:     repo,
		metrics:  m,
		interval: 30 * time.Second, // Refresh every 30 seconds
		stop:     make(chan struct{}),
	}
}

func (j *UserStatsJob) Start(ctx context.Context) {
	log.Println("🕐 Starting user stats job...")

	// Prime the gauges before the first tick.
	j.refresh(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ User stats job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ User stats job stopped")
			return
		case <-ticker.C:
			j.refresh(ctx)
		}
	}
}

func (j *UserStatsJob) Stop() {
	close(j.stop)
}

func (j *UserStatsJob) refresh(ctx context.Context) {
	total, err := j.repo.CountUsers(ctx)
	if err != nil {
		log.Printf("❌ Error counting users: %v", err)
		return
	}

	linked, err := j.repo.CountWalletLinked(ctx)
	if err != nil {
		log.Printf("❌ Error counting wallet-linked users: %v", err)
		return
	}

	j.metrics.SetUserCounts(total, linked)
}
