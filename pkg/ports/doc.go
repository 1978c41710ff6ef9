/*
Package ports defines the driven ports (interfaces) for the NumberHop backend.

These interfaces decouple the core logic from external implementations, allowing
the practice backend to work with various storage and ranking backends.

# Key Interfaces

  - PlayerStore: Responsible for player records and name-based login.
  - QuestionStore: Responsible for the exercise bank, keyed by level.
  - ScoreStore: Responsible for recorded results and aggregated totals.
  - Ranker: Responsible for the live leaderboard (e.g. Redis or Memory).
*/
package ports
