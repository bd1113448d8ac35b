// Package janitor runs small periodic housekeeping jobs (currently: a
// store-size heartbeat) alongside the ingest/retrieval server.
package janitor

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/yaoapp/kun/log"
)

// Sizer is implemented by store backends that can report how much they
// are holding; backends that can't cheaply compute this skip the
// heartbeat rather than implement it approximately.
type Sizer interface {
	Size(ctx context.Context) (chunks int64, bytes int64, err error)
}

// Janitor wraps a cron.Cron scheduling a store-size heartbeat log line.
type Janitor struct {
	cron *cron.Cron
}

// New builds a Janitor that logs st's size on the given cron schedule
// (standard 5-field cron syntax). If st does not implement Sizer, the
// heartbeat is skipped and New returns a Janitor with no scheduled jobs.
func New(schedule string, st interface{}) (*Janitor, error) {
	j := &Janitor{cron: cron.New()}

	sizer, ok := st.(Sizer)
	if !ok {
		return j, nil
	}

	_, err := j.cron.AddFunc(schedule, func() {
		chunks, bytes, err := sizer.Size(context.Background())
		if err != nil {
			log.Warn("[Janitor] size heartbeat failed: %s", err.Error())
			return
		}
		log.Info("[Janitor] store holds %d chunks (%d bytes)", chunks, bytes)
	})
	if err != nil {
		return nil, err
	}

	return j, nil
}

// Start begins running scheduled jobs in the background.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts scheduled jobs, waiting for any in-flight run to finish.
func (j *Janitor) Stop() { j.cron.Stop() }
