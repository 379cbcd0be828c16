package statistic

import (
	"context"
	"fmt"
	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
	"onegoodthing/internal/statistic/interfaces"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
	"sync"
	"time"
)

const reminderRunTimeout = 5 * time.Minute

// Scheduler owns the background jobs: periodic snapshots of the memory
// store and the mail sweeps.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	fileManager *FileManager
	snapshot    storage.Snapshotter
	reminders   services.ReminderServiceInterface
	metrics     providers.MetricsProviderInterface
	cron        *cron.Cron
	opsMu       sync.Mutex
	now         func() time.Time

	persistRuns  *atomic.Uint64
	mailRuns     map[string]*atomic.Uint64
}

// mailJob is one scheduled sweep of the reminder service.
type mailJob struct {
	name string
	spec string
	run  func(ctx context.Context, now time.Time) (int, error)
}

func (s *Scheduler) persistEnabled() bool {
	return s.config.Storage.SnapshotFile != "" && s.snapshot.EntryCount() >= 0
}

func (s *Scheduler) Init() error {
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if s.persistEnabled() && s.config.Storage.SaveInterval > 0 {
		s.cron.Schedule(cron.Every(s.config.Storage.SaveInterval), cron.FuncJob(func() {
			_ = s.Persist()
		}))
		s.logger.Infof(providers.TypeApp, "Snapshot every %s to %s", s.config.Storage.SaveInterval, s.config.Storage.SnapshotFile)
	}

	if s.config.Reminders.Enabled {
		for _, job := range s.mailJobs() {
			if job.spec == "" {
				continue
			}
			if _, err := s.cron.AddFunc(job.spec, func() { s.runMail(job) }); err != nil {
				return fmt.Errorf("invalid %s schedule %q: %w", job.name, job.spec, err)
			}
			s.logger.Infof(providers.TypeApp, "%s sweep scheduled at %q", job.name, job.spec)
		}
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) mailJobs() []mailJob {
	conf := s.config.Reminders
	return []mailJob{
		{name: "reminder", spec: conf.Schedule, run: s.reminders.SendDue},
		{name: "re-engagement", spec: conf.ReengagementSchedule, run: s.reminders.SendReengagement},
		{name: "follow-up", spec: conf.FollowupSchedule, run: s.reminders.SendFollowups},
	}
}

func (s *Scheduler) runMail(job mailJob) {
	ctx, cancel := context.WithTimeout(context.Background(), reminderRunTimeout)
	defer cancel()

	s.mailRuns[job.name].Inc()
	sent, err := job.run(ctx, s.now())
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "%s sweep failed after %d emails: %s", job.name, sent, err)
		return
	}
	s.logger.Infof(providers.TypeApp, "%s sweep sent %d emails", job.name, sent)
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) Restore() error {
	if !s.persistEnabled() {
		return nil
	}
	err := s.fileManager.LoadFromFile(s.config.Storage.SnapshotFile)
	if err != nil {
		return err
	}
	s.metrics.SetEntriesTotal(s.snapshot.EntryCount())
	return nil
}

func (s *Scheduler) Persist() error {
	if !s.persistEnabled() {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Storage.SnapshotFile)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting journal: %s", err)
		return err
	}
	s.persistRuns.Inc()
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.metrics.SetEntriesTotal(s.snapshot.EntryCount())
	s.logger.Debugf(providers.TypeApp, "Persisted journal to file %s", s.config.Storage.SnapshotFile)
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, snapshot storage.Snapshotter, reminders services.ReminderServiceInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return newScheduler(config, logger, fileManager, snapshot, reminders, metrics)
}

func newScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, snapshot storage.Snapshotter, reminders services.ReminderServiceInterface, metrics providers.MetricsProviderInterface) *Scheduler {
	return &Scheduler{
		config:       config,
		logger:       logger,
		fileManager:  fileManager,
		snapshot:     snapshot,
		reminders:    reminders,
		metrics:      metrics,
		now:          time.Now,
		persistRuns:  atomic.NewUint64(0),
		mailRuns: map[string]*atomic.Uint64{
			"reminder":      atomic.NewUint64(0),
			"re-engagement": atomic.NewUint64(0),
			"follow-up":     atomic.NewUint64(0),
		},
	}
}
