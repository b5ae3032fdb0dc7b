// Package repository contains data access logic separated from HTTP
// handlers. Each repository wraps a *sql.DB and exposes typed methods with
// sentinel errors so handlers can map failures onto HTTP statuses without
// inspecting driver errors.
package repository

import "errors"

// ErrInsufficientBalance is returned when an order would overdraw the
// buyer's prepaid balance. Handlers translate it into HTTP 400.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrEpinUnavailable is returned when the requested e-pin is already sold
// or deactivated and therefore cannot be purchased.
var ErrEpinUnavailable = errors.New("epin unavailable")
