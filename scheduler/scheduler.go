package scheduler

import (
	"fmt"
	"sync"
	"time"

	"ai_room_design/config"
	"ai_room_design/logger"
	"ai_room_design/repository"
)

// 验证小时和分钟是否有效
func validateHourMinute(hour, minute int) (int, int) {
	if hour < 0 || hour > 23 {
		logger.Warn("无效的小时值", "hour", hour, "default", 3)
		hour = 3
	}
	if minute < 0 || minute > 59 {
		logger.Warn("无效的分钟值", "minute", minute, "default", 0)
		minute = 0
	}
	return hour, minute
}

// 计算下一个指定时间点
func getNextTimePoint(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if next.Before(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// 任务类型
type TaskType int

const (
	TaskHistoryCleanup TaskType = iota
)

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	NextRun     time.Time
	IsRunning   bool
	Description string
}

// 任务调度器
type Scheduler struct {
	cfg   *config.Config
	tasks map[TaskType]*TaskStatus
	mutex sync.Mutex
}

// 创建新的调度器
func NewScheduler(cfg *config.Config) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		tasks: make(map[TaskType]*TaskStatus),
	}
}

// 启动调度器
func Start(cfg *config.Config) {
	scheduler := NewScheduler(cfg)
	scheduler.initTasks()
	go scheduler.run()

	checkInterval := cfg.Scheduler.CheckIntervalSec
	if checkInterval <= 0 {
		checkInterval = 60
	}
	logger.Info("调度器已启动", "check_interval_sec", checkInterval)
}

// 初始化任务
func (s *Scheduler) initTasks() {
	now := time.Now()

	// 历史记录清理任务，每天在指定时间点运行
	hour, minute := validateHourMinute(s.cfg.Scheduler.CleanupHour, s.cfg.Scheduler.CleanupMin)
	nextRun := getNextTimePoint(now, hour, minute)

	s.tasks[TaskHistoryCleanup] = &TaskStatus{
		LastRun:     nextRun.Add(-24 * time.Hour),
		NextRun:     nextRun,
		IsRunning:   false,
		Description: fmt.Sprintf("历史记录清理 (%02d:%02d)", hour, minute),
	}

	logger.Info("定时任务初始化完成", "task_count", len(s.tasks), "next_cleanup", nextRun.Format("2006-01-02 15:04:05"))
}

// 主循环
func (s *Scheduler) run() {
	checkInterval := s.cfg.Scheduler.CheckIntervalSec
	if checkInterval <= 0 {
		checkInterval = 60
	}
	ticker := time.NewTicker(time.Duration(checkInterval) * time.Second)
	defer ticker.Stop()

	for now := range ticker.C {
		s.checkTasks(now)
	}
}

// 检查任务
func (s *Scheduler) checkTasks(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for taskType, status := range s.tasks {
		if status.IsRunning {
			continue
		}
		if status.NextRun.IsZero() {
			continue
		}
		if now.After(status.NextRun) || now.Equal(status.NextRun) {
			status.IsRunning = true
			go s.runTask(taskType, now)
		}
	}
}

// 运行任务
func (s *Scheduler) runTask(taskType TaskType, now time.Time) {
	defer func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		status := s.tasks[taskType]
		status.IsRunning = false
		status.LastRun = now

		switch taskType {
		case TaskHistoryCleanup:
			hour, minute := validateHourMinute(s.cfg.Scheduler.CleanupHour, s.cfg.Scheduler.CleanupMin)
			status.NextRun = getNextTimePoint(now, hour, minute)
		}

		logger.Info("任务执行完成", "task", status.Description, "next_run", status.NextRun.Format("2006-01-02 15:04:05"))
	}()

	switch taskType {
	case TaskHistoryCleanup:
		retentionDays := s.cfg.Scheduler.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		logger.Info("开始清理历史记录", "retention_days", retentionDays)

		deleted, err := repository.DeleteRunsOlderThan(retentionDays)
		if err != nil {
			logger.Error("历史记录清理失败", "error", err)
			return
		}
		logger.Info("历史记录清理完成", "deleted_rows", deleted)
	}
}
