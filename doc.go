// Package cantonstream turns a remote ledger's failure-prone transaction
// feed into a durable-feeling, per-subscriber sequence of committed events.
// It tracks offsets, reconnects with exponential backoff, deduplicates
// reconnection replay, and buffers deliveries behind an explicit overflow
// policy, so a consumer sees strictly increasing offsets and at-least-once
// delivery for as long as the process lives.
//
// An EventStream is configured once (buffer size, poll interval, overflow
// policy, initial offset) and hands out filter-scoped subscriptions: each
// Subscribe call opens its own transport stream driven by a background
// goroutine, and the returned Subscription yields transactions via Next
// until it is cancelled or terminally failed. Cancellation is cooperative
// and never discards transactions that were already buffered.
//
// # Transports
//
// The ledger wire protocol is not implemented here. The transport package
// defines the boundary (open a filtered stream from an offset, receive
// transactions) and transport/channel provides an in-memory ledger for
// tests and examples; applications register their own RPC-backed transport
// against the same interface.
//
// # Overflow policies
//
// OverflowBlock (the default) pauses transport reads when the buffer fills,
// backpressuring the server and never losing events. OverflowDropOldest
// evicts the oldest buffered transactions instead and surfaces a
// BufferOverflowError item in the stream, for latency-sensitive consumers
// that tolerate gaps.
//
// # Resumption
//
// Offsets live in process memory. To resume across restarts, give the
// EventStream an offset store (see the offsetstore package: in-memory or
// Redis) and a SubscriptionName; delivered offsets are then committed after
// each transaction and the next subscription under the same name resumes
// strictly after the last committed offset.
//
// The remaining packages round out a wallet client: keystore manages
// Ed25519 signing keys (in-memory or JSON-file backed), wallet derives
// party identities from key fingerprints, and bridge republishes delivered
// transactions onto Watermill publishers (in-memory channels, NATS, Kafka)
// for downstream services.
package cantonstream
