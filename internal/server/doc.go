// Package server runs the game link: a TCP accept loop for stream clients
// and an HTTP router that serves websocket clients, health and metrics.
// Every connection gets its own session.Session.
package server
