package scheduler

import (
	"testing"
)

func TestAddJob(t *testing.T) {
	s := NewEventScheduler()

	if err := s.AddJob("detector", "@every 30s", func() {}); err != nil {
		t.Fatalf("add job: %v", err)
	}
	if err := s.AddJob("detector", "@every 30s", func() {}); err == nil {
		t.Error("duplicate job id accepted")
	}
	if err := s.AddJob("bad", "not a cron", func() {}); err == nil {
		t.Error("invalid expression accepted")
	}

	jobs := s.ListJobs()
	if len(jobs) != 1 || jobs["detector"].NextRun == nil {
		t.Errorf("jobs = %+v", jobs)
	}

	if err := s.RemoveJob("detector"); err != nil {
		t.Errorf("remove: %v", err)
	}
	if len(s.ListJobs()) != 0 {
		t.Error("job still listed after remove")
	}
}
