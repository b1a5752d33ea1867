// Copyright 2026 The Clubledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"context"
	"sync"
	"time"
)

type ScheduledTask struct {
	interval          int
	ticksSinceLastRun int
	running           bool
	task              func(context.Context)
	runFailFunc       func()
}

// Scheduler runs registered tasks every N ticks. The dev block producer is a
// one-tick task that advances the ledger clock.
type Scheduler struct {
	mutex              sync.Mutex
	interval           time.Duration
	ticker             *time.Ticker
	ctx                context.Context
	cancel             context.CancelFunc
	quit               chan struct{}
	updateIntervalChan chan time.Duration
	tasks              []*ScheduledTask
	startOnce          sync.Once
	stopOnce           sync.Once
	wg                 sync.WaitGroup
}

func NewScheduler(interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval:           interval,
		ctx:                ctx,
		cancel:             cancel,
		quit:               make(chan struct{}),
		updateIntervalChan: make(chan time.Duration),
		tasks:              []*ScheduledTask{},
	}
}

// Start the timer (run goroutine once)
func (st *Scheduler) Start() {
	st.startOnce.Do(func() {
		st.mutex.Lock()
		st.ticker = time.NewTicker(st.interval)
		st.mutex.Unlock()
		st.wg.Add(1)
		go st.run()
	})
}

// Listens for tick events and interval updates and updating the ticker accordingly.
func (st *Scheduler) run() {
	defer st.wg.Done()
	for {
		select {
		case <-st.ticker.C:
			st.tick()
		case newInterval := <-st.updateIntervalChan:
			st.mutex.Lock()
			st.ticker.Reset(newInterval)
			st.interval = newInterval
			st.mutex.Unlock()
		case <-st.quit:
			st.ticker.Stop()
			return
		}
	}
}

// Increments per-task tick counters and executes tasks when due. A task whose
// previous run has not returned is skipped and its fail func called.
func (st *Scheduler) tick() {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	for _, task := range st.tasks {
		task.ticksSinceLastRun++
		if task.ticksSinceLastRun < task.interval {
			continue
		}
		task.ticksSinceLastRun = 0
		if task.running {
			if task.runFailFunc != nil {
				st.wg.Add(1)
				go func(fn func()) {
					defer st.wg.Done()
					fn()
				}(task.runFailFunc)
			}
			continue
		}
		task.running = true
		st.wg.Add(1)
		go func(task *ScheduledTask) {
			defer st.wg.Done()
			task.task(st.ctx)
			st.mutex.Lock()
			task.running = false
			st.mutex.Unlock()
		}(task)
	}
}

// Register adds a task run every interval ticks. runFailFunc may be nil.
func (st *Scheduler) Register(
	interval int,
	task func(context.Context),
	runFailFunc func(),
) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	st.tasks = append(st.tasks, &ScheduledTask{
		interval:    max(interval, 1),
		task:        task,
		runFailFunc: runFailFunc,
	})
}

// ChangeInterval updates the tick interval of the Scheduler at runtime.
func (st *Scheduler) ChangeInterval(newInterval time.Duration) {
	select {
	case st.updateIntervalChan <- newInterval:
	default:
	}
}

// Stop the timer and wait for running tasks. Tasks see their context
// cancelled.
func (st *Scheduler) Stop() {
	st.stopOnce.Do(func() {
		close(st.quit)
		st.cancel()
	})
	st.wg.Wait()
}
