// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     The token is also surfaced via the `X-Session-Token` header and a
//     `session_token` cookie. DELETE /sessions/current revokes it.
//   - POST /users: registers an account exchanging the `userDTO` payload
//     defined in auth_handler.go.
//   - GET /rooms, POST /rooms, GET /rooms/{id}, DELETE /rooms/{id}: room
//     catalog endpoints exchanging the `roomDTO` payload defined in
//     room_handler.go. Listing is available to any authenticated principal
//     while mutations require admin privileges.
//   - GET /rooms/{id}/status: derived availability state for a room.
//   - GET /rooms/{id}/availability?start=&end=: probes one interval.
//   - GET /rooms/{id}/reservations?date=: lists bookings for a calendar day.
//   - POST /rooms/{id}/reservations, DELETE /rooms/{id}/reservations/{rid}:
//     booking endpoints exchanging the `reservationDTO` payload defined in
//     reservation_handler.go.
//   - GET /events: server-sent event stream of booking lifecycle events.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
