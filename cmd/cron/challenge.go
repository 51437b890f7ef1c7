package main

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"karmabot/internal/services"
)

// ChallengeDeadlineJob finalizes active challenges whose deadline has passed.
// Challenges where nobody reached the target settle with an empty winner list
// and pay nothing.
type ChallengeDeadlineJob struct {
	serviceChallenge *services.ServiceChallenge
}

func NewChallengeDeadlineJob(serviceChallenge *services.ServiceChallenge) *ChallengeDeadlineJob {
	return &ChallengeDeadlineJob{serviceChallenge}
}

func (j *ChallengeDeadlineJob) Start(cronRunner *cron.Cron) {
	_, err := cronRunner.AddFunc("@every 5m", j.run)
	log.Println("Challenge deadline cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), err)
	j.run()
}

func (j *ChallengeDeadlineJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := j.serviceChallenge.FinalizeExpired(ctx); err != nil {
		log.Println("deadline sweep failed:", err)
	}
}
