// Package toast implements the storefront's toast notification queue.
//
// A Queue holds the notifications currently on screen in display order.
// Each enqueued notification is removed automatically once its display
// duration elapses, or earlier when it is dismissed. All expiry deadlines
// of a queue are owned by one scheduler, so notifications with equal
// durations always expire in the order they were enqueued.
package toast
