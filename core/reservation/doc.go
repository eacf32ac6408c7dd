// Package reservation implements the station hold lifecycle.
//
// A Store owns one Entry per reserved station and serialises every mutation
// behind a single lock. A Ticker calls Store.Advance on a fixed interval; holds
// that reach zero are released through the same path as Store.Cancel, so an
// expired hold and a cancelled one leave identical state behind.
//
// Lifecycle changes are reported as Event values to an optional Notifier
// (usually an eventbus.TypedBus) after the lock has been released.
package reservation
