// Package events defines the notifications the broker dispatches by event type
// name, and their JSON form.
//
// Design decisions:
//   - Open set: Event is a capability interface, so new variants are added by
//     declaring a type, not by touching the broker
//   - Concrete dispatch: handlers type-switch on the concrete variant they care
//     about and ignore the rest
//   - Self-describing JSON: every encoded event carries a "type" discriminator
//     so FromJSON can restore the concrete variant
//   - Time ordered ids: event ids are UUIDv7 so they sort in publish order
//
// Event hierarchy:
//   - Event: interface implemented by every notification
//     └── StatusChange: a component announcing its new status
//
// Example usage:
//
//	broker.SubscribeEvent(events.StatusChangeType, func(ctx context.Context, ev events.Event) error {
//	    switch e := ev.(type) {
//	    case events.StatusChange:
//	        return apply(e.Status)
//	    }
//	    return nil
//	})
//
//	broker.PublishEvent(events.StatusChangeType, events.NewStatusChange("status-changer", events.StatusReceive))
//
// Variants defined outside this package can join the JSON codec through
// Register.
package events
