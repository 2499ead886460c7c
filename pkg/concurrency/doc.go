/*
Package concurrency provides the small set of concurrency primitives this
repository's broker and client actually need, on top of observability.

Features:
  - SmartMutex / SmartRWMutex: slow-lock logging on top of sync.Mutex/RWMutex
  - SafeGo / FanOut: panic-recovering goroutine launch, used for every
    push-loop and background receive task
*/
package concurrency
