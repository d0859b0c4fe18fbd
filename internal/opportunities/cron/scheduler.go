// Package cronjob expires overdue listings on a nightly schedule.
package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"github.com/enspm-hub/hub-backend/internal/opportunities/repository"
)

type Scheduler struct {
	pool       *pgxpool.Pool
	stages     *repository.StageRepository
	emplois    *repository.EmploiRepository
	formations *repository.FormationRepository
	cron       *cron.Cron
}

func NewScheduler(pool *pgxpool.Pool) *Scheduler {
	return &Scheduler{
		pool:       pool,
		stages:     repository.NewStageRepository(),
		emplois:    repository.NewEmploiRepository(),
		formations: repository.NewFormationRepository(),
	}
}

// Start initializes cron tasks. Listings are also expired lazily on read,
// the nightly sweep keeps the boards honest when nobody browses them.
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	//  (12:00 AM)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		s.runNightlySweep()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Cron scheduler started (expiring listings nightly at 12:00AM)")
	c.Start()
	s.cron = c
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) runNightlySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()

	stages, err := s.stages.ExpireOverdue(ctx, s.pool, now)
	if err != nil {
		log.Printf("Expiring internships failed: %v", err)
	}
	emplois, err := s.emplois.ExpireOverdue(ctx, s.pool, now)
	if err != nil {
		log.Printf("Expiring jobs failed: %v", err)
	}
	formations, err := s.formations.ExpireOverdue(ctx, s.pool, now)
	if err != nil {
		log.Printf("Expiring trainings failed: %v", err)
	}

	log.Printf("Nightly sweep completed: %d internships, %d jobs, %d trainings expired", stages, emplois, formations)
}
