// Package events pairs begin and end signals into closed event intervals.
//
// A Registry holds at most one open event per CompositeKey. Begin opens an
// event and End closes it, appending the finished individual to the episode
// document. TerminateAllOpen closes whatever is still open at finalize, so
// no begun event is ever lost.
//
// Event kinds are rows of a template table: the class asserted on the event,
// its task context prefix and the role predicate bound to each participant.
//
//	reg := events.NewRegistry(doc, namer)
//	key := events.Key(events.Contact, cup, table)
//	_ = reg.Begin(key, events.Event{Kind: events.Contact, Participants: []events.Participant{cup, table}}, 0.30)
//	_ = reg.End(key, 0.33)
package events
