package otel

import "go.opentelemetry.io/otel/metric"

// Metrics holds all taskdeck metric instruments.
type Metrics struct {
	PollTicks        metric.Int64Counter
	PollSkipped      metric.Int64Counter
	PollErrors       metric.Int64Counter
	SessionsActive   metric.Int64UpDownCounter
	RowsUpdated      metric.Int64Counter
	RowsInserted     metric.Int64Counter
	RowsRemoved      metric.Int64Counter
	MutationDuration metric.Float64Histogram
	AuthExpiries     metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.PollTicks, err = meter.Int64Counter("taskdeck.poll.ticks",
		metric.WithDescription("Poll ticks that issued a fetch"),
	)
	if err != nil {
		return nil, err
	}

	m.PollSkipped, err = meter.Int64Counter("taskdeck.poll.skipped",
		metric.WithDescription("Poll ticks skipped because a fetch was in flight"),
	)
	if err != nil {
		return nil, err
	}

	m.PollErrors, err = meter.Int64Counter("taskdeck.poll.errors",
		metric.WithDescription("Fetch failures surfaced to the user"),
	)
	if err != nil {
		return nil, err
	}

	m.SessionsActive, err = meter.Int64UpDownCounter("taskdeck.poll.sessions",
		metric.WithDescription("Currently active polling sessions"),
	)
	if err != nil {
		return nil, err
	}

	m.RowsUpdated, err = meter.Int64Counter("taskdeck.reconcile.updated",
		metric.WithDescription("Rows updated in place by reconciliation"),
	)
	if err != nil {
		return nil, err
	}

	m.RowsInserted, err = meter.Int64Counter("taskdeck.reconcile.inserted",
		metric.WithDescription("Rows inserted by reconciliation"),
	)
	if err != nil {
		return nil, err
	}

	m.RowsRemoved, err = meter.Int64Counter("taskdeck.reconcile.removed",
		metric.WithDescription("Rows removed by confirmed deletes"),
	)
	if err != nil {
		return nil, err
	}

	m.MutationDuration, err = meter.Float64Histogram("taskdeck.mutation.duration",
		metric.WithDescription("Mutation request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.AuthExpiries, err = meter.Int64Counter("taskdeck.auth.expired",
		metric.WithDescription("Requests rejected with 401"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
