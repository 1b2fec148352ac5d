// Package stream implements the store engine behind streamstore.
//
// A Store holds one state value and a set of listeners. Update merges a
// partial value into the current state, replaces it, and synchronously
// notifies every listener that is still subscribed:
//
//	s := stream.NewRecord(stream.Record{"count": 0})
//	unsubscribe := s.SubscribeFunc(func() {
//	    fmt.Println("count is", s.Get()["count"])
//	})
//	s.Update(stream.Record{"count": 5}) // prints "count is 5"
//	unsubscribe()
//
// # Merging
//
// The merge strategy is supplied at construction. MergeRecord performs a
// one-level merge of Record values and always allocates a new map, so the
// state identity changes on every update even when no field changed.
// MergeStruct merges struct states field by field, treating zero-valued
// fields of the partial as absent.
//
// # Listeners
//
// Listeners are identified by ID, so subscribing the same listener twice
// keeps a single entry. A listener removed while a notification pass is
// running is not called again, including for the rest of that pass.
//
// Listeners run on the goroutine that called Update and no lock is held
// while they run, so a listener may call Update itself. Such re-entrant
// updates notify all listeners again, recursively; nothing bounds this.
//
// # Thread Safety
//
// The store is meant to be driven from one goroutine at a time (the render
// loop that owns it). Internal state is guarded so that stray reads from
// other goroutines are race-free, but concurrent writers are not ordered.
package stream
