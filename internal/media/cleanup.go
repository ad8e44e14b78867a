package media

import (
	"context"
	"log"
	"time"
)

// CleanupScheduler periodically sweeps the staging area for media that was
// pushed but never attached to a saved note.
type CleanupScheduler struct {
	staging  *StagingStore
	interval time.Duration
	maxAge   time.Duration
}

func NewCleanupScheduler(staging *StagingStore, interval, maxAge time.Duration) *CleanupScheduler {
	return &CleanupScheduler{
		staging:  staging,
		interval: interval,
		maxAge:   maxAge,
	}
}

func (s *CleanupScheduler) Start(ctx context.Context) {
	log.Println("Staging cleanup scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ctx.Done():
			log.Println("Staging cleanup scheduler stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *CleanupScheduler) sweep() {
	removed, err := s.staging.Sweep(s.maxAge)
	if err != nil {
		log.Printf("Error sweeping staging area: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Removed %d abandoned staged files", removed)
	}
}
