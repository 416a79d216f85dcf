// Package task defines the durable task model and the rules that make
// the orchestrator correct: the status state machine, the retry/backoff
// policy, the idempotent submission contract, and the Store interface
// behind which persistence lives.
//
// A task is created as PENDING and transitioned to QUEUED in the same
// transaction. Workers claim QUEUED tasks and move them to RUNNING,
// then to COMPLETED, FAILED, or back to QUEUED with a delayed
// next_run_at. COMPLETED, FAILED, and CANCELED are terminal. Every
// status change appends exactly one audit Event in the same transaction
// as the status write.
//
// Components interact only through the Store and Enqueuer interfaces,
// keeping the lifecycle logic decoupled from Postgres and Redis. The
// in-memory MemoryStore backs tests.
package task
