/*
Package domain contains the core domain models for the NumberHop engine.

It defines the fundamental entities of the number-line walk, the move
sequencing state machine, and the practice backend. This package is kept
pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Move: One committed hop on the number line (from, to, applied value).
  - Phase: The sequencer mode (Idle, Moving, Paused).
  - Snapshot: The observable runtime state of a walk at one instant.
  - Player, Question, Score: The practice backend records.
  - LeaderboardEntry: An aggregated ranking row.
*/
package domain
