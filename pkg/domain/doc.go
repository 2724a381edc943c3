/*
Package domain defines the core entities of Stateline: workflow Definitions
(states plus guarded transitions), running Instances, and the error kinds the
engine surfaces.

Definitions are immutable once created. Instances evolve exclusively through
executed actions; every executed transition appends a HistoryEntry and the
history list only grows.
*/
package domain
