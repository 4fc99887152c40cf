// Package booking holds the reservation rules shared by every create, update and
// resolve flow: record normalization, reservation-type end dates, interval conflict
// detection, the status machine and the vehicle precheck gate.
//
// Everything here is pure and synchronous. FindConflicts works on whatever snapshot
// of reservations the caller hands it, so two callers holding the same snapshot can
// both be told an interval is free. The result is advisory: the service layer
// re-runs the check against fresh rows under a per-asset lock before it writes.
package booking
