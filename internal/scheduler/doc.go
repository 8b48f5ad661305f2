// Package scheduler runs named periodic jobs on top of robfig/cron.
//
// Every job fires once as soon as it is registered (or when the service starts),
// then at its fixed interval. Jobs are wrapped with panic recovery and are skipped
// while a previous run of the same job is still in flight.
package scheduler
