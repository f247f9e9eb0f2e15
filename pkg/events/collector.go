package events

// EventCollector is embedded in aggregates that record events as they change
// state. The zero value is ready to use.
type EventCollector struct {
	pending []DomainEvent
}

// Record queues an event for the next Drain.
func (c *EventCollector) Record(evts ...DomainEvent) {
	c.pending = append(c.pending, evts...)
}

// Events returns a copy of the queued events.
func (c *EventCollector) Events() []DomainEvent {
	out := make([]DomainEvent, len(c.pending))
	copy(out, c.pending)
	return out
}

// Drain returns the queued events and empties the queue.
func (c *EventCollector) Drain() []DomainEvent {
	drained := c.pending
	c.pending = nil
	return drained
}
